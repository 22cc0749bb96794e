// Package scrape implements the review collector: listing pages are walked
// for movie links, then every movie's review pages are fetched until one
// comes back empty. Failures are contained per movie so a single broken page
// never kills the batch.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/kinolens/review-radar/internal/config"
	"github.com/kinolens/review-radar/internal/dedupe"
	"github.com/kinolens/review-radar/internal/models"
)

// Collector fetches review pages sequentially with a fixed inter-request
// delay. It keeps no state between runs beyond the URL dedupe cache.
type Collector struct {
	cfg     *config.Scrape
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
	seen    *dedupe.Cache
	robots  *robotstxt.Group
	log     *slog.Logger
}

// NewCollector validates the base URL and prepares the HTTP client.
func NewCollector(cfg *config.Scrape, log *slog.Logger) (*Collector, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}

	return &Collector{
		cfg:     cfg,
		base:    base,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(limit, 1),
		seen:    dedupe.NewCache(2*cfg.MaxMovies, time.Hour),
		log:     log,
	}, nil
}

// Collect runs the full scrape: movie URLs first, then reviews per movie.
// Per-movie errors are logged and skipped; only context cancellation and a
// completely empty listing batch are returned as errors.
func (c *Collector) Collect(ctx context.Context) ([]models.Review, error) {
	if c.cfg.RespectRobots {
		c.loadRobots(ctx)
	}

	urls, err := c.movieURLs(ctx)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, errors.New("no movie links collected from listing pages")
	}

	c.log.Info("movie urls collected", slog.Int("count", len(urls)))

	var reviews []models.Review
	for _, movieURL := range urls {
		batch, err := c.movieReviews(ctx, movieURL)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return reviews, err
			}
			c.log.Warn("scrape movie failed, skipping",
				slog.String("url", movieURL),
				slog.Any("err", err),
			)
			continue
		}
		reviews = append(reviews, batch...)
	}

	c.log.Info("scrape finished", slog.Int("reviews", len(reviews)))
	return reviews, nil
}

func (c *Collector) movieURLs(ctx context.Context) ([]string, error) {
	var urls []string

	for page := 1; page <= c.cfg.ListingPages && len(urls) < c.cfg.MaxMovies; page++ {
		doc, err := c.fetch(ctx, c.absolute(fmt.Sprintf(listingPath, page)))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return urls, err
			}
			c.log.Warn("listing page failed, skipping",
				slog.Int("page", page),
				slog.Any("err", err),
			)
			continue
		}

		links := extractMovieLinks(doc)
		if len(links) == 0 {
			// Past the last listing page.
			break
		}

		for _, link := range links {
			resolved := c.absolute(link)
			if c.seen.IsSeen(resolved) {
				continue
			}
			c.seen.MarkSeen(resolved)
			urls = append(urls, resolved)
			if len(urls) >= c.cfg.MaxMovies {
				break
			}
		}
	}

	return urls, nil
}

func (c *Collector) movieReviews(ctx context.Context, movieURL string) ([]models.Review, error) {
	movieID := movieIDFromURL(movieURL)
	var reviews []models.Review

	for page := 1; page <= c.cfg.ReviewPages; page++ {
		pageURL := strings.TrimSuffix(movieURL, "/") + fmt.Sprintf(reviewsPath, page)
		doc, err := c.fetch(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("reviews page %d: %w", page, err)
		}

		raws := extractReviews(doc)
		if len(raws) == 0 {
			// Zero review blocks means no more reviews, not an error.
			break
		}

		for _, raw := range raws {
			reviews = append(reviews, models.Review{
				MovieID:    movieID,
				ReviewText: raw.text,
				Author:     raw.author,
				Rating:     parseRating(raw.rating),
				ReviewDate: models.ParseDate(raw.date),
			})
		}
	}

	return reviews, nil
}

func (c *Collector) fetch(ctx context.Context, rawURL string) (*html.Node, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if c.robots != nil && !c.robots.Test(parsed.Path) {
		return nil, fmt.Errorf("disallowed by robots.txt: %s", parsed.Path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return doc, nil
}

// loadRobots fetches robots.txt once per run. Best effort: on any failure
// the collector proceeds without a robots gate, matching how the source
// project behaved.
func (c *Collector) loadRobots(ctx context.Context) {
	robotsURL := c.absolute("/robots.txt")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug("robots.txt unavailable", slog.Any("err", err))
		return
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		c.log.Debug("robots.txt unparseable", slog.Any("err", err))
		return
	}

	c.robots = data.FindGroup(c.cfg.UserAgent)
}

func (c *Collector) absolute(link string) string {
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return c.base.ResolveReference(ref).String()
}

// movieIDFromURL takes the last non-empty path segment, e.g.
// "/film/4443734/" -> "4443734".
func movieIDFromURL(movieURL string) string {
	parsed, err := url.Parse(movieURL)
	if err != nil {
		return movieURL
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 {
		return parsed.Path
	}
	return segments[len(segments)-1]
}
