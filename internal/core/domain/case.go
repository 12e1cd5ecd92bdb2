package domain

// JudgeNotSpecified is stored when no judge name could be resolved.
const JudgeNotSpecified = "Not specified"

// CaseRecord is the structured metadata extracted from one judgment.
// Position is shared with the vector index point id.
type CaseRecord struct {
	Position    int      `json:"position"`
	DocumentID  string   `json:"document_id"`
	CaseID      string   `json:"case_id"`
	Court       string   `json:"court"`
	Date        string   `json:"date"`
	Judge       string   `json:"judge"`
	Petitioners []string `json:"petitioners"`
	Respondents []string `json:"respondents"`
	Sections    []string `json:"sections"`
	Outcome     string   `json:"outcome"`
	FullText    string   `json:"full_text"`
}

// QueryResult pairs a record with its raw index distance and derived similarity.
type QueryResult struct {
	Record     CaseRecord `json:"record"`
	Distance   float64    `json:"distance"`
	Similarity float64    `json:"similarity"`
}

// IndexHit is one nearest-neighbour answer of the vector index.
type IndexHit struct {
	Position int
	Distance float64
}

type EntityLabel string

const (
	EntityOrg    EntityLabel = "ORG"
	EntityPerson EntityLabel = "PERSON"
	EntityDate   EntityLabel = "DATE"
)

// Entity is a named entity found in judgment text.
type Entity struct {
	Text  string      `json:"text"`
	Label EntityLabel `json:"label"`
}

// ExtractionReport lists the fields that stayed empty after every strategy.
type ExtractionReport struct {
	Gaps []string `json:"gaps,omitempty"`
}
