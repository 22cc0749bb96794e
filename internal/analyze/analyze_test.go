package analyze_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kinolens/review-radar/internal/analyze"
	"github.com/kinolens/review-radar/internal/models"
)

func ptr(v float64) *float64 { return &v }

func date(year int, month time.Month, day int) *models.Date {
	d := models.NewDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
	return &d
}

func TestRatingHistogram(t *testing.T) {
	rows := []models.Review{
		{Rating: ptr(0)},
		{Rating: ptr(4.9)},
		{Rating: ptr(5.0)},
		{Rating: ptr(10)}, // must land in the last bucket, not past it
		{Rating: nil},
	}

	hist := analyze.RatingHistogram(rows, 2)
	require.Len(t, hist, 2)
	require.Equal(t, 2, hist[0].Count)
	require.Equal(t, 2, hist[1].Count)
	require.InDelta(t, 0.0, hist[0].Low, 1e-9)
	require.InDelta(t, 5.0, hist[0].High, 1e-9)
	require.InDelta(t, 10.0, hist[1].High, 1e-9)
}

func TestMonthlyCountsSortedAndSkipsNilDates(t *testing.T) {
	rows := []models.Review{
		{ReviewDate: date(2023, time.March, 5)},
		{ReviewDate: date(2023, time.January, 10)},
		{ReviewDate: date(2023, time.March, 20)},
		{ReviewDate: nil},
	}

	got := analyze.MonthlyCounts(rows)
	require.Equal(t, []models.MonthlyCount{
		{Month: "2023-01", Count: 1},
		{Month: "2023-03", Count: 2},
	}, got)
}

func TestTopTerms(t *testing.T) {
	rows := []models.Review{
		{CleanText: "фильм сюжет сюжет"},
		{CleanText: "фильм актеры"},
	}

	got := analyze.TopTerms(rows, 2)
	require.Equal(t, []models.TermCount{
		{Term: "сюжет", Count: 2},
		{Term: "фильм", Count: 2},
	}, got)

	require.Nil(t, analyze.TopTerms(nil, 5))
}

func TestScorerCompoundWithinBounds(t *testing.T) {
	scorer := analyze.NewScorer()

	texts := []string{
		"great movie absolutely loved it",
		"terrible boring waste of time",
		"отличный фильм",
		"words outside any lexicon whatsoever",
	}

	for _, text := range texts {
		score := scorer.ScoreReview(text)
		require.NotNil(t, score)
		require.GreaterOrEqual(t, *score, -1.0)
		require.LessOrEqual(t, *score, 1.0)
	}

	require.Nil(t, scorer.ScoreReview(""))
}

func TestScoreReadsRawTextSoNegationSurvives(t *testing.T) {
	scorer := analyze.NewScorer()

	// The stopword filter drops "not" from clean_text; scoring the filtered
	// tokens would report this negative review as positive.
	rows := []models.Review{{
		ReviewText: "This movie is not good and not worth your time",
		CleanText:  "movie good worth your time",
	}}

	scorer.Score(rows)
	require.NotNil(t, rows[0].SentimentScore)
	require.Less(t, *rows[0].SentimentScore, 0.0)

	// The filtered form really would mis-score, which is why Score must not
	// use it.
	fromClean := scorer.ScoreReview(rows[0].CleanText)
	require.Greater(t, *fromClean, 0.0)
}

func TestScorerOrdersObviousPolarity(t *testing.T) {
	scorer := analyze.NewScorer()
	positive := scorer.ScoreReview("great wonderful amazing movie")
	negative := scorer.ScoreReview("horrible awful terrible movie")
	require.Greater(t, *positive, *negative)
}

func TestCorrelationBoundsAndPairCount(t *testing.T) {
	rows := []models.Review{
		{Rating: ptr(9), SentimentScore: ptr(0.8)},
		{Rating: ptr(2), SentimentScore: ptr(-0.6)},
		{Rating: ptr(7), SentimentScore: ptr(0.3)},
		{Rating: ptr(5), SentimentScore: nil}, // incomplete pair excluded
		{Rating: nil, SentimentScore: ptr(0.1)},
	}

	corr := analyze.RatingSentimentCorrelation(rows)
	require.Equal(t, 3, corr.Pairs)
	require.GreaterOrEqual(t, corr.Pearson, -1.0)
	require.LessOrEqual(t, corr.Pearson, 1.0)
	require.Greater(t, corr.Pearson, 0.9, "monotone pairs correlate strongly")
}

func TestCorrelationDegenerateInputs(t *testing.T) {
	// A single pair cannot be correlated.
	one := analyze.RatingSentimentCorrelation([]models.Review{
		{Rating: ptr(5), SentimentScore: ptr(0.5)},
	})
	require.Equal(t, 1, one.Pairs)
	require.Zero(t, one.Pearson)

	// Zero variance on one side must not produce NaN.
	flat := analyze.RatingSentimentCorrelation([]models.Review{
		{Rating: ptr(5), SentimentScore: ptr(0.1)},
		{Rating: ptr(5), SentimentScore: ptr(0.9)},
	})
	require.Equal(t, 2, flat.Pairs)
	require.Zero(t, flat.Pearson)
}

func TestBuildReport(t *testing.T) {
	rows := []models.Review{
		{CleanText: "отличный фильм", Rating: ptr(9), SentimentScore: ptr(0.7), ReviewDate: date(2023, time.May, 1)},
		{CleanText: "скучный фильм", Rating: ptr(3), SentimentScore: ptr(-0.4), ReviewDate: date(2023, time.June, 2)},
	}

	report := analyze.BuildReport(rows, 10, 20)
	require.Len(t, report.Histogram, 20)
	require.Len(t, report.Monthly, 2)
	require.NotEmpty(t, report.TopTerms)
	require.Equal(t, "фильм", report.TopTerms[0].Term)
	require.Equal(t, 2, report.Correlation.Pairs)
}
