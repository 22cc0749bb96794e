package scrape

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Fixed selectors for the review source. Selector maintenance is a
// deployment concern; the values live here in one place.
const (
	listingPath     = "/lists/movies/year--2023/?page=%d"
	reviewsPath     = "/reviews/?page=%d"
	movieLinkClass  = "movie-item__link"
	reviewItemClass = "review-item"
	reviewTextClass = "review-item__text"
	ratingClass     = "review-item__rating"
	dateClass       = "review-item__date"
	authorClass     = "review-item__author"
)

// rawReview carries the per-review strings exactly as extracted; field
// coercion happens in the collector.
type rawReview struct {
	text   string
	author string
	rating string
	date   string
}

func extractMovieLinks(root *html.Node) []string {
	var links []string
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, movieLinkClass) {
			if href := attrVal(n, "href"); href != "" {
				links = append(links, href)
			}
		}
	})
	return links
}

func extractReviews(root *html.Node) []rawReview {
	var reviews []rawReview
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, reviewItemClass) {
			reviews = append(reviews, rawReview{
				text:   textByClass(n, reviewTextClass),
				author: textByClass(n, authorClass),
				rating: textByClass(n, ratingClass),
				date:   textByClass(n, dateClass),
			})
		}
	})
	return reviews
}

// parseRating coerces the scraped rating text to a float in [0, 10].
// Anything else becomes nil, never an error.
func parseRating(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	// "7,5" and "8 / 10" variants show up on older pages.
	raw = strings.ReplaceAll(raw, ",", ".")
	if fields := strings.Fields(raw); len(fields) > 0 {
		raw = fields[0]
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 || value > 10 {
		return nil
	}

	return &value
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, fn)
	}
}

func hasClass(n *html.Node, name string) bool {
	for _, cls := range strings.Fields(attrVal(n, "class")) {
		if cls == name {
			return true
		}
	}
	return false
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// textByClass returns the trimmed text content of the first descendant
// carrying the class, or "" when the node is absent.
func textByClass(root *html.Node, name string) string {
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && hasClass(n, name) {
			found = n
		}
	})
	if found == nil {
		return ""
	}

	var sb strings.Builder
	walk(found, func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}
