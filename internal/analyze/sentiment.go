package analyze

import (
	"github.com/jonreiter/govader"

	"github.com/kinolens/review-radar/internal/models"
)

// Scorer wraps the VADER lexicon analyzer. The compound score is already
// normalized to [-1, 1]; text outside the lexicon's vocabulary scores 0.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewScorer builds a scorer with the embedded default lexicon.
func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// ScoreReview returns the compound polarity of one text, or nil for empty
// input.
func (s *Scorer) ScoreReview(text string) *float64 {
	if text == "" {
		return nil
	}
	compound := s.analyzer.PolarityScores(text).Compound
	return &compound
}

// Score fills SentimentScore for every row in place. Scoring reads the raw
// review text, not clean_text: the stopword filter strips negators ("не",
// "not"), and scoring the filtered tokens would flip the polarity of
// negated reviews. VADER does its own tokenization.
func (s *Scorer) Score(rows []models.Review) {
	for i := range rows {
		rows[i].SentimentScore = s.ScoreReview(rows[i].ReviewText)
	}
}
