// Package ranking orders vector-search candidates for a query.
//
// Ranking is a strict three-tier decision: an exact case identifier in the query wins outright,
// then a recognized query intent filters candidates, and only then does similarity order them.
// Tiers are never blended.
package ranking

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

var queryCaseID = regexp.MustCompile(`(?i)(Crl\.MC\.No\.|CRL\.MC\s+NO\.)\s*\d+\s*(?:of|OF)\s*\d+`)

const (
	DefaultHeuristicLimit  = 5
	DefaultSimilarityLimit = 3
)

type Ranker struct {
	intents         []Intent
	heuristicLimit  int
	similarityLimit int
	logger          *slog.Logger
}

type Option func(*Ranker)

func WithIntents(intents []Intent) Option {
	return func(r *Ranker) { r.intents = intents }
}

func WithLimits(heuristic, similarity int) Option {
	return func(r *Ranker) {
		if heuristic > 0 {
			r.heuristicLimit = heuristic
		}
		if similarity > 0 {
			r.similarityLimit = similarity
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(opts ...Option) *Ranker {
	r := &Ranker{
		intents:         DefaultIntents(),
		heuristicLimit:  DefaultHeuristicLimit,
		similarityLimit: DefaultSimilarityLimit,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Similarity maps a squared L2 distance between unit vectors onto [-1, 1].
func Similarity(distance float64) float64 {
	return 1 - distance/2
}

// Rank picks the shortlist for query from candidates, which arrive in index order.
func (r *Ranker) Rank(query string, candidates []domain.QueryResult) domain.Ranking {
	scored := make([]domain.QueryResult, len(candidates))
	for i, c := range candidates {
		c.Similarity = Similarity(c.Distance)
		scored[i] = c
	}
	if len(scored) == 0 {
		return domain.Ranking{Path: domain.RankPathNone}
	}

	if hit, ok := r.exactMatch(query, scored); ok {
		return domain.Ranking{Path: domain.RankPathExactID, Results: []domain.QueryResult{hit}}
	}
	if ranking, ok := r.heuristic(query, scored); ok {
		return ranking
	}
	return domain.Ranking{Path: domain.RankPathSimilarity, Results: r.bySimilarity(scored)}
}

func (r *Ranker) exactMatch(query string, candidates []domain.QueryResult) (domain.QueryResult, bool) {
	raw := queryCaseID.FindString(query)
	if raw == "" {
		return domain.QueryResult{}, false
	}
	want := NormalizeCaseID(raw)
	for _, c := range candidates {
		if NormalizeCaseID(c.Record.CaseID) == want {
			return c, true
		}
	}
	r.logger.Warn("exact_id_miss", "case_id", want, "candidates", len(candidates))
	return domain.QueryResult{}, false
}

// heuristic evaluates only the first intent the query matches.
func (r *Ranker) heuristic(query string, candidates []domain.QueryResult) (domain.Ranking, bool) {
	for _, intent := range r.intents {
		if !intent.Matches(query) {
			continue
		}
		var kept []domain.QueryResult
		for _, c := range candidates {
			if intent.Keep(c.Record) {
				kept = append(kept, c)
				if len(kept) == r.heuristicLimit {
					break
				}
			}
		}
		if len(kept) == 0 {
			r.logger.Debug("heuristic_intent_empty", "intent", intent.Name)
			return domain.Ranking{}, false
		}
		return domain.Ranking{Path: domain.RankPathHeuristic, Intent: intent.Name, Results: kept}, true
	}
	return domain.Ranking{}, false
}

func (r *Ranker) bySimilarity(candidates []domain.QueryResult) []domain.QueryResult {
	sorted := append([]domain.QueryResult(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Similarity > sorted[j].Similarity
	})
	if len(sorted) > r.similarityLimit {
		sorted = sorted[:r.similarityLimit]
	}
	return sorted
}

// NormalizeCaseID uppercases and drops all whitespace so "Crl.MC.No.6 OF 2014" equals "Crl.MC.No. 6 of 2014".
func NormalizeCaseID(id string) string {
	return strings.ToUpper(strings.Join(strings.Fields(id), ""))
}
