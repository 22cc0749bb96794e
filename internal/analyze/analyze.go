// Package analyze holds the read-only aggregations over the cleaned review
// table: rating histogram, monthly volume, term frequencies, sentiment
// scoring and the rating/sentiment correlation.
package analyze

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/kinolens/review-radar/internal/models"
)

// Report bundles every aggregate the exporter persists.
type Report struct {
	Histogram   []models.RatingBucket
	Monthly     []models.MonthlyCount
	TopTerms    []models.TermCount
	Correlation models.Correlation
}

// BuildReport runs all aggregations over rows. Rows must already carry
// clean_text and sentiment_score.
func BuildReport(rows []models.Review, topTerms, buckets int) Report {
	return Report{
		Histogram:   RatingHistogram(rows, buckets),
		Monthly:     MonthlyCounts(rows),
		TopTerms:    TopTerms(rows, topTerms),
		Correlation: RatingSentimentCorrelation(rows),
	}
}

// RatingHistogram buckets non-nil ratings over the fixed [0, 10] scale.
// A rating of exactly 10 lands in the last bucket.
func RatingHistogram(rows []models.Review, buckets int) []models.RatingBucket {
	if buckets <= 0 {
		buckets = 20
	}

	width := 10.0 / float64(buckets)
	out := make([]models.RatingBucket, buckets)
	for i := range out {
		out[i].Low = float64(i) * width
		out[i].High = float64(i+1) * width
	}

	for _, r := range rows {
		if r.Rating == nil {
			continue
		}
		idx := int(*r.Rating / width)
		if idx >= buckets {
			idx = buckets - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}

	return out
}

// MonthlyCounts groups reviews by YYYY-MM. Rows without a date are
// excluded. The result is sorted chronologically.
func MonthlyCounts(rows []models.Review) []models.MonthlyCount {
	counts := make(map[string]int)
	for _, r := range rows {
		if r.ReviewDate == nil {
			continue
		}
		counts[r.ReviewDate.Month()]++
	}

	out := make([]models.MonthlyCount, 0, len(counts))
	for month, count := range counts {
		out = append(out, models.MonthlyCount{Month: month, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })

	return out
}

// TermFrequencies counts clean_text tokens across all rows.
func TermFrequencies(rows []models.Review) map[string]int {
	freq := make(map[string]int)
	for _, r := range rows {
		for _, token := range strings.Fields(r.CleanText) {
			freq[token]++
		}
	}
	return freq
}

// TopTerms returns the most frequent clean_text tokens, count descending
// with an alphabetical tie-break.
func TopTerms(rows []models.Review, limit int) []models.TermCount {
	freq := TermFrequencies(rows)
	if len(freq) == 0 {
		return nil
	}

	out := make([]models.TermCount, 0, len(freq))
	for term, count := range freq {
		out = append(out, models.TermCount{Term: term, Count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Term < out[j].Term
		}
		return out[i].Count > out[j].Count
	})

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}

	return out
}

// RatingSentimentCorrelation computes the Pearson coefficient over rows
// where both rating and sentiment are present. Fewer than two complete
// pairs, or zero variance on either side, yields a zero coefficient.
func RatingSentimentCorrelation(rows []models.Review) models.Correlation {
	var ratings, scores []float64
	for _, r := range rows {
		if r.Rating == nil || r.SentimentScore == nil {
			continue
		}
		ratings = append(ratings, *r.Rating)
		scores = append(scores, *r.SentimentScore)
	}

	result := models.Correlation{Pairs: len(ratings)}
	if len(ratings) < 2 {
		return result
	}

	if r := stat.Correlation(ratings, scores, nil); !math.IsNaN(r) {
		result.Pearson = r
	}

	return result
}
