// Package clean removes rows the analyzer cannot use: exact duplicate
// (review_text, author) pairs and reviews with no text.
package clean

import (
	"strings"

	"github.com/kinolens/review-radar/internal/models"
)

// Reviews returns a filtered copy of rows. The first occurrence of each
// (review_text, author) pair wins; blank-text rows are dropped. Pure and
// order-preserving.
func Reviews(rows []models.Review) []models.Review {
	seen := make(map[string]struct{}, len(rows))
	out := make([]models.Review, 0, len(rows))

	for _, r := range rows {
		if strings.TrimSpace(r.ReviewText) == "" {
			continue
		}

		key := r.ReviewText + "\x00" + r.Author
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, r)
	}

	return out
}
