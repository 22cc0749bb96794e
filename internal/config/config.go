package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Scrape holds the collector knobs. The delay and page caps mirror the
// source project's constants but stay env-tunable because nothing documents
// why those exact values were chosen.
type Scrape struct {
	BaseURL        string
	UserAgent      string
	RequestDelay   time.Duration
	RequestTimeout time.Duration
	ListingPages   int
	MaxMovies      int
	ReviewPages    int
	RespectRobots  bool
}

// Pipeline configures the one-shot scrape-and-analyze run.
type Pipeline struct {
	Scrape
	DataDir          string
	RawPath          string
	CleanedPath      string
	FinalPath        string
	HistogramPath    string
	MonthlyPath      string
	TermsPath        string
	CorrelationPath  string
	WordCloudPath    string
	WordCloudFont    string
	TokenMinLength   int
	TopTerms         int
	WordCloudTerms   int
	HistogramBuckets int
	KafkaBrokers     []string // empty disables publishing
	KafkaTopic       string
}

// Worker holds configuration for the Kafka -> Elasticsearch worker.
type Worker struct {
	Common
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	TokenMinLength int
	DedupeCapacity int
	DedupeTTL      time.Duration
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr    string
	DefaultPage int
	MaxPage     int
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

func loadScrape() Scrape {
	return Scrape{
		BaseURL:        getEnv("SCRAPE_BASE_URL", "https://www.kinopoisk.ru"),
		UserAgent:      getEnv("SCRAPE_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"),
		RequestDelay:   getDuration("SCRAPE_REQUEST_DELAY", "2s"),
		RequestTimeout: getDuration("SCRAPE_REQUEST_TIMEOUT", "20s"),
		ListingPages:   getInt("SCRAPE_LISTING_PAGES", 5),
		MaxMovies:      getInt("SCRAPE_MAX_MOVIES", 100),
		ReviewPages:    getInt("SCRAPE_REVIEW_PAGES", 5),
		RespectRobots:  getBool("SCRAPE_RESPECT_ROBOTS", true),
	}
}

// LoadPipeline builds a Pipeline config from environment variables.
func LoadPipeline() (*Pipeline, error) {
	dataDir := getEnv("DATA_DIR", "data")

	c := &Pipeline{
		Scrape:           loadScrape(),
		DataDir:          dataDir,
		RawPath:          filepath.Join(dataDir, "raw", "reviews_raw.csv"),
		CleanedPath:      filepath.Join(dataDir, "processed", "reviews_cleaned.csv"),
		FinalPath:        filepath.Join(dataDir, "processed", "reviews_final.csv"),
		HistogramPath:    filepath.Join(dataDir, "processed", "rating_histogram.csv"),
		MonthlyPath:      filepath.Join(dataDir, "processed", "reviews_per_month.csv"),
		TermsPath:        filepath.Join(dataDir, "processed", "top_terms.csv"),
		CorrelationPath:  filepath.Join(dataDir, "processed", "rating_sentiment_correlation.csv"),
		WordCloudPath:    filepath.Join(dataDir, "processed", "wordcloud_all_reviews.png"),
		WordCloudFont:    getEnv("WORDCLOUD_FONT", filepath.Join("assets", "fonts", "DejaVuSans.ttf")),
		TokenMinLength:   getInt("PIPELINE_TOKEN_MIN_LEN", 3),
		TopTerms:         getInt("PIPELINE_TOP_TERMS", 25),
		WordCloudTerms:   getInt("PIPELINE_WORDCLOUD_TERMS", 150),
		HistogramBuckets: getInt("PIPELINE_HISTOGRAM_BUCKETS", 20),
		KafkaBrokers:     splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "reviews_raw"),
	}

	if c.BaseURL == "" {
		return nil, fmt.Errorf("SCRAPE_BASE_URL must not be empty")
	}
	if c.RequestDelay < 0 {
		return nil, fmt.Errorf("SCRAPE_REQUEST_DELAY cannot be negative")
	}
	if c.ListingPages <= 0 {
		return nil, fmt.Errorf("SCRAPE_LISTING_PAGES must be positive")
	}
	if c.MaxMovies <= 0 {
		return nil, fmt.Errorf("SCRAPE_MAX_MOVIES must be positive")
	}
	if c.ReviewPages <= 0 {
		return nil, fmt.Errorf("SCRAPE_REVIEW_PAGES must be positive")
	}
	if c.TokenMinLength < 0 {
		return nil, fmt.Errorf("PIPELINE_TOKEN_MIN_LEN cannot be negative")
	}
	if c.TopTerms <= 0 {
		return nil, fmt.Errorf("PIPELINE_TOP_TERMS must be positive")
	}
	if c.HistogramBuckets <= 0 {
		return nil, fmt.Errorf("PIPELINE_HISTOGRAM_BUCKETS must be positive")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common: Common{
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "reviews"),
		},
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "reviews_raw"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "review-worker"),
		TokenMinLength: getInt("WORKER_TOKEN_MIN_LEN", 3),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.TokenMinLength < 0 {
		return nil, fmt.Errorf("WORKER_TOKEN_MIN_LEN cannot be negative")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common: Common{
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "reviews"),
		},
		BindAddr:    getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage: getInt("API_PAGE_SIZE", 20),
		MaxPage:     getInt("API_MAX_PAGE_SIZE", 100),
	}

	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common: Common{
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "reviews"),
		},
		Interval:  getDuration("RETENTION_INTERVAL", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "8760h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_INTERVAL must be positive")
	}
	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
