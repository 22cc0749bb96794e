package models

import (
	"strings"
	"time"
)

// DateLayout is the canonical day-precision format used in CSV snapshots.
const DateLayout = "2006-01-02"

// Review is one user-submitted review of one movie. The collector fills the
// scraped fields; CleanText and SentimentScore are derived later and stay
// empty/nil until the tokenizer and analyzer run. Rating, ReviewDate and
// SentimentScore are pointers so that a missing value survives CSV and JSON
// round trips as an empty cell / null instead of a fake zero.
type Review struct {
	MovieID        string   `json:"movie_id" csv:"movie_id"`
	ReviewText     string   `json:"review_text" csv:"review_text"`
	Rating         *float64 `json:"rating" csv:"rating"`
	ReviewDate     *Date    `json:"review_date" csv:"review_date"`
	Author         string   `json:"author" csv:"author"`
	CleanText      string   `json:"clean_text" csv:"clean_text"`
	SentimentScore *float64 `json:"sentiment_score" csv:"sentiment_score"`
}

// Date wraps time.Time so gocsv writes day precision instead of RFC3339.
type Date struct {
	time.Time
}

// NewDate truncates ts to day precision in UTC.
func NewDate(ts time.Time) Date {
	return Date{time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)}
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (d Date) MarshalCSV() (string, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(DateLayout), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller. Empty cells leave the
// zero value in place.
func (d *Date) UnmarshalCSV(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	ts, err := time.Parse(DateLayout, raw)
	if err != nil {
		return err
	}
	d.Time = ts
	return nil
}

// Month returns the YYYY-MM grouping key used by the time-series
// aggregation.
func (d Date) Month() string {
	return d.Format("2006-01")
}

// ParseDate interprets the date strings seen on review pages and in raw
// snapshots. Unknown formats yield nil, which downstream stages treat as
// "date missing" rather than an error.
func ParseDate(raw string) *Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	formats := []string{
		DateLayout,
		"02.01.2006",
		time.RFC3339,
		"2006-01-02 15:04:05",
	}

	for _, f := range formats {
		if ts, err := time.Parse(f, raw); err == nil {
			d := NewDate(ts)
			return &d
		}
	}

	return nil
}
