package models

// RatingBucket is one bar of the rating histogram.
type RatingBucket struct {
	Low   float64 `json:"low" csv:"low"`
	High  float64 `json:"high" csv:"high"`
	Count int     `json:"count" csv:"count"`
}

// MonthlyCount is the review volume for one YYYY-MM period.
type MonthlyCount struct {
	Month string `json:"month" csv:"month"`
	Count int    `json:"count" csv:"count"`
}

// TermCount is one row of the word-frequency table.
type TermCount struct {
	Term  string `json:"term" csv:"term"`
	Count int    `json:"count" csv:"count"`
}

// Correlation reports the Pearson coefficient between rating and sentiment
// together with the number of complete pairs it was computed from.
type Correlation struct {
	Pairs   int     `json:"pairs" csv:"pairs"`
	Pearson float64 `json:"pearson" csv:"pearson"`
}
