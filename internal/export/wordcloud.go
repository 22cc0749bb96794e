package export

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/psykhi/wordclouds"
)

var cloudPalette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

// WriteWordCloud renders the term-frequency map as a PNG at path. Only the
// maxWords most frequent terms are drawn to keep rendering bounded.
func WriteWordCloud(path, fontPath string, freqs map[string]int, maxWords int) error {
	if len(freqs) == 0 {
		return fmt.Errorf("word cloud: no terms to render")
	}

	// The renderer panics on an unreadable font, so check it up front and
	// fail with a normal error instead.
	if _, err := os.Stat(fontPath); err != nil {
		return fmt.Errorf("word cloud font: %w", err)
	}

	freqs = topTerms(freqs, maxWords)

	cloud := wordclouds.NewWordcloud(freqs,
		wordclouds.FontFile(fontPath),
		wordclouds.FontMaxSize(220),
		wordclouds.FontMinSize(12),
		wordclouds.Width(2048),
		wordclouds.Height(1024),
		wordclouds.Colors(cloudPalette),
		wordclouds.BackgroundColor(color.White),
	)

	img := cloud.Draw()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return nil
}

func topTerms(freqs map[string]int, limit int) map[string]int {
	if limit <= 0 || len(freqs) <= limit {
		return freqs
	}

	type kv struct {
		term  string
		count int
	}

	pairs := make([]kv, 0, len(freqs))
	for term, count := range freqs {
		pairs = append(pairs, kv{term: term, count: count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count == pairs[j].count {
			return pairs[i].term < pairs[j].term
		}
		return pairs[i].count > pairs[j].count
	})

	out := make(map[string]int, limit)
	for _, pair := range pairs[:limit] {
		out[pair.term] = pair.count
	}
	return out
}
