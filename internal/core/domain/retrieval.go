package domain

type RankPath string

const (
	RankPathNone       RankPath = "none"
	RankPathExactID    RankPath = "exact_id"
	RankPathHeuristic  RankPath = "heuristic"
	RankPathSimilarity RankPath = "similarity"
)

// Ranking is the shortlist chosen by the ranker and the tier that produced it.
type Ranking struct {
	Path    RankPath      `json:"path"`
	Intent  string        `json:"intent,omitempty"`
	Results []QueryResult `json:"results"`
}

type SynthesisOutcome string

const (
	OutcomeApology          SynthesisOutcome = "apology"
	OutcomeAccepted         SynthesisOutcome = "accepted"
	OutcomeTemplated        SynthesisOutcome = "templated"
	OutcomeGenerationFailed SynthesisOutcome = "generation_failed"
)

// GenerationParams are the sampling parameters passed to a text generator.
type GenerationParams struct {
	MaxNewTokens int
	Temperature  float64
	SampleCount  int
}

// Answer is the response to one query, including the shortlist for the detail view.
type Answer struct {
	Query     string           `json:"query"`
	Text      string           `json:"text"`
	Outcome   SynthesisOutcome `json:"outcome"`
	Path      RankPath         `json:"path"`
	Intent    string           `json:"intent,omitempty"`
	Shortlist []QueryResult    `json:"shortlist"`
}
