package imgnamer

import (
	"context"
	"log/slog"
	"sort"
)

// positionMalus is subtracted from a candidate's score per position in the
// engine order, so equal scores resolve to the engine's earlier result.
const positionMalus = 0.1

// RankOpts carries the optional inputs of a ranking pass.
type RankOpts struct {
	ReferenceFile string // local image compared against reported dimensions
	Hint          string // free text expected in the winning title
}

// RankedResult is a candidate with its computed scores.
type RankedResult struct {
	Result   SearchResult
	Index    int     // position in the input sequence
	Score    float64 // pattern × hint × dimension factors
	Adjusted float64 // Score minus the positional malus
}

// Score computes the relevance of res. ref may be nil when no reference
// dimensions are available; the dimension factor is then omitted.
func (cfg *Config) Score(res SearchResult, ref *Dimensions, hint string) float64 {
	score := PatternBonus(res.Title, res.Location, cfg.Rules) *
		HintBonus(res.Title, hint, cfg.minHintWordLength())

	if ref != nil && res.Dimensions.Known() {
		sim, err := DimensionSimilarity(res.Dimensions, *ref)
		if err != nil {
			slog.Debug("imgnamer: dimension factor skipped", "title", res.Title, "error", err.Error())
		} else {
			score *= sim
		}
	}
	return score
}

// ScoreResult is like Score but reads the reference dimensions from opts.ReferenceFile.
func (cfg *Config) ScoreResult(res SearchResult, opts RankOpts) float64 {
	return cfg.Score(res, cfg.referenceDimensions(opts.ReferenceFile), opts.Hint)
}

// ChooseBest returns the title of the highest-ranked result. Scores are
// adjusted by -index/10 and exact ties go to the earlier result.
// Returns ErrEmptyResultSet when results is empty.
func (cfg *Config) ChooseBest(results []SearchResult, opts RankOpts) (string, error) {
	if len(results) == 0 {
		return "", ErrEmptyResultSet
	}
	scores := cfg.scoreAll(results, opts)
	best := pickBest(scores)
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		for i, r := range results {
			slog.Debug("imgnamer: candidate",
				"index", i,
				"title", r.Title,
				"location", r.Location,
				"dimensions", r.Dimensions.String(),
				"score", scores[i],
				"adjusted", adjustedScore(scores[i], i))
		}
	}
	slog.Debug("imgnamer: best candidate",
		"title", results[best].Title,
		"index", best,
		"score", scores[best],
		"candidates", len(results))
	return results[best].Title, nil
}

// Rank returns every result ordered by adjusted score, highest first, with
// ties in input order. The first element is the result ChooseBest picks.
func (cfg *Config) Rank(results []SearchResult, opts RankOpts) ([]RankedResult, error) {
	if len(results) == 0 {
		return nil, ErrEmptyResultSet
	}
	scores := cfg.scoreAll(results, opts)
	ranked := make([]RankedResult, len(results))
	for i, r := range results {
		ranked[i] = RankedResult{
			Result:   r,
			Index:    i,
			Score:    scores[i],
			Adjusted: adjustedScore(scores[i], i),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Adjusted > ranked[j].Adjusted
	})
	return ranked, nil
}

func (cfg *Config) scoreAll(results []SearchResult, opts RankOpts) []float64 {
	ref := cfg.referenceDimensions(opts.ReferenceFile)
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = cfg.Score(r, ref, opts.Hint)
	}
	return scores
}

// referenceDimensions reads the reference image once per pass. Failures
// disable the dimension factor instead of failing the ranking.
func (cfg *Config) referenceDimensions(path string) *Dimensions {
	if path == "" {
		return nil
	}
	dims, err := cfg.dimensionReader()(path)
	if err != nil {
		slog.Debug("imgnamer: reference dimensions unavailable", "path", path, "error", err.Error())
		return nil
	}
	if !dims.Known() {
		return nil
	}
	return &dims
}

func adjustedScore(score float64, index int) float64 {
	return score - float64(index)*positionMalus
}

// pickBest returns the index with the highest adjusted score; the earliest
// index wins exact ties. scores must not be empty.
func pickBest(scores []float64) int {
	best := 0
	bestAdj := adjustedScore(scores[0], 0)
	for i := 1; i < len(scores); i++ {
		if adj := adjustedScore(scores[i], i); adj > bestAdj {
			best, bestAdj = i, adj
		}
	}
	return best
}
