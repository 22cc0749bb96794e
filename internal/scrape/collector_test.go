package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kinolens/review-radar/internal/config"
)

const listingBody = `<html><body>
<a class="movie-item__link" href="/film/100/">Фильм один</a>
<a class="movie-item__link" href="/film/200/">Фильм два</a>
<a class="movie-item__link" href="/film/100/">Фильм один (дубль)</a>
</body></html>`

const reviewsBody = `<html><body>
<div class="review-item">
  <a class="review-item__author">ivan</a>
  <span class="review-item__date">02.01.2024</span>
  <span class="review-item__rating">8.0</span>
  <div class="review-item__text">Отличный фильм, смотрел два раза</div>
</div>
<div class="review-item">
  <a class="review-item__author">anna</a>
  <span class="review-item__date">когда-то</span>
  <span class="review-item__rating">N/A</span>
  <div class="review-item__text">Скучно и затянуто</div>
</div>
</body></html>`

func testConfig(baseURL string) *config.Scrape {
	return &config.Scrape{
		BaseURL:        baseURL,
		UserAgent:      "review-radar-test",
		RequestDelay:   0,
		RequestTimeout: 5 * time.Second,
		ListingPages:   3,
		MaxMovies:      10,
		ReviewPages:    4,
	}
}

func newTestServer(t *testing.T, maxReviewPage *atomic.Int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/lists/movies/year--2023/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			io.WriteString(w, listingBody)
			return
		}
		io.WriteString(w, "<html><body>пусто</body></html>")
	})
	mux.HandleFunc("/film/100/reviews/", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
		if page > maxReviewPage.Load() {
			maxReviewPage.Store(page)
		}
		if page == 1 {
			io.WriteString(w, reviewsBody)
			return
		}
		io.WriteString(w, "<html><body>отзывов больше нет</body></html>")
	})
	mux.HandleFunc("/film/200/reviews/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	return httptest.NewServer(mux)
}

func TestCollectScrapesReviewsAndSkipsBrokenMovie(t *testing.T) {
	var maxReviewPage atomic.Int64
	srv := newTestServer(t, &maxReviewPage)
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector, err := NewCollector(testConfig(srv.URL), log)
	require.NoError(t, err)

	reviews, err := collector.Collect(context.Background())
	require.NoError(t, err)

	// film/200 fails with 500 and is skipped; film/100 yields two reviews.
	require.Len(t, reviews, 2)
	for _, r := range reviews {
		require.Equal(t, "100", r.MovieID)
	}

	require.Equal(t, "Отличный фильм, смотрел два раза", reviews[0].ReviewText)
	require.Equal(t, "ivan", reviews[0].Author)
	require.NotNil(t, reviews[0].Rating)
	require.InDelta(t, 8.0, *reviews[0].Rating, 1e-9)
	require.NotNil(t, reviews[0].ReviewDate)
	require.Equal(t, "2024-01", reviews[0].ReviewDate.Month())

	// Malformed rating and date coerce to nil instead of failing the row.
	require.Nil(t, reviews[1].Rating)
	require.Nil(t, reviews[1].ReviewDate)

	// The empty page 2 stops pagination before the configured cap of 4.
	require.Equal(t, int64(2), maxReviewPage.Load())
}

func TestCollectRespectsRobots(t *testing.T) {
	var maxReviewPage atomic.Int64
	srv := newTestServer(t, &maxReviewPage)
	defer srv.Close()

	mux := srv.Config.Handler.(*http.ServeMux)
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "User-agent: *\nDisallow: /film/\n")
	})

	cfg := testConfig(srv.URL)
	cfg.RespectRobots = true

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector, err := NewCollector(cfg, log)
	require.NoError(t, err)

	reviews, err := collector.Collect(context.Background())
	require.NoError(t, err)
	require.Empty(t, reviews, "every movie page is disallowed")
	require.Zero(t, maxReviewPage.Load())
}

func TestCollectFailsWhenListingsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body>ничего</body></html>")
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector, err := NewCollector(testConfig(srv.URL), log)
	require.NoError(t, err)

	_, err = collector.Collect(context.Background())
	require.Error(t, err)
}

func TestMovieURLsDedupAndCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingBody)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxMovies = 1

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector, err := NewCollector(cfg, log)
	require.NoError(t, err)

	urls, err := collector.movieURLs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{srv.URL + "/film/100/"}, urls)
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{input: "7.5", want: ptr(7.5)},
		{input: "7,5", want: ptr(7.5)},
		{input: "8 / 10", want: ptr(8.0)},
		{input: "", want: nil},
		{input: "N/A", want: nil},
		{input: "11", want: nil},
		{input: "-1", want: nil},
	}

	for _, tt := range tests {
		got := parseRating(tt.input)
		if tt.want == nil {
			require.Nil(t, got, "input %q", tt.input)
			continue
		}
		require.NotNil(t, got, "input %q", tt.input)
		require.InDelta(t, *tt.want, *got, 1e-9)
	}
}

func ptr(v float64) *float64 { return &v }
