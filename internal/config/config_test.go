package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kinolens/review-radar/internal/config"
)

func TestLoadPipelineDefaults(t *testing.T) {
	t.Setenv("SCRAPE_BASE_URL", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := config.LoadPipeline()
	require.NoError(t, err)

	require.Equal(t, "https://www.kinopoisk.ru", cfg.BaseURL)
	require.Equal(t, 2*time.Second, cfg.RequestDelay)
	require.Equal(t, 5, cfg.ListingPages)
	require.Equal(t, 100, cfg.MaxMovies)
	require.Equal(t, 5, cfg.ReviewPages)
	require.Equal(t, 3, cfg.TokenMinLength)
	require.Equal(t, filepath.Join("data", "raw", "reviews_raw.csv"), cfg.RawPath)
	require.Equal(t, filepath.Join("data", "processed", "reviews_final.csv"), cfg.FinalPath)
	require.Equal(t, filepath.Join("data", "processed", "wordcloud_all_reviews.png"), cfg.WordCloudPath)
	require.Empty(t, cfg.KafkaBrokers, "publishing is off unless brokers are set")
}

func TestLoadPipelineOverrides(t *testing.T) {
	t.Setenv("SCRAPE_BASE_URL", "http://localhost:8081")
	t.Setenv("SCRAPE_REQUEST_DELAY", "50ms")
	t.Setenv("SCRAPE_LISTING_PAGES", "2")
	t.Setenv("SCRAPE_MAX_MOVIES", "7")
	t.Setenv("SCRAPE_REVIEW_PAGES", "3")
	t.Setenv("DATA_DIR", "/tmp/out")
	t.Setenv("PIPELINE_TOP_TERMS", "10")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")

	cfg, err := config.LoadPipeline()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8081", cfg.BaseURL)
	require.Equal(t, 50*time.Millisecond, cfg.RequestDelay)
	require.Equal(t, 2, cfg.ListingPages)
	require.Equal(t, 7, cfg.MaxMovies)
	require.Equal(t, 3, cfg.ReviewPages)
	require.Equal(t, 10, cfg.TopTerms)
	require.Equal(t, filepath.Join("/tmp/out", "raw", "reviews_raw.csv"), cfg.RawPath)
	require.Len(t, cfg.KafkaBrokers, 2)
	require.Equal(t, "broker-a:29092", cfg.KafkaBrokers[0])
}

func TestLoadPipelineRejectsZeroCaps(t *testing.T) {
	t.Setenv("SCRAPE_LISTING_PAGES", "0")

	_, err := config.LoadPipeline()
	require.Error(t, err)
}

func TestLoadWorker(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("ELASTICSEARCH_INDEX", "custom")
	t.Setenv("KAFKA_BROKERS", "broker:29092")
	t.Setenv("KAFKA_TOPIC", "custom_topic")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("WORKER_TOKEN_MIN_LEN", "4")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.ElasticsearchAddr)
	require.Equal(t, "custom", cfg.ElasticsearchIndex)
	require.Equal(t, []string{"broker:29092"}, cfg.KafkaBrokers)
	require.Equal(t, "custom_topic", cfg.KafkaTopic)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, 4, cfg.TokenMinLength)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
}

func TestLoadAPI(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("API_PAGE_SIZE", "15")
	t.Setenv("API_MAX_PAGE_SIZE", "200")
	t.Setenv("ELASTICSEARCH_ADDR", "http://api-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "api-index")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 15, cfg.DefaultPage)
	require.Equal(t, 200, cfg.MaxPage)
	require.Equal(t, "http://api-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "api-index", cfg.ElasticsearchIndex)
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://ret-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "ret-index")
	t.Setenv("RETENTION_INTERVAL", "12h")
	t.Setenv("RETENTION_MAX_AGE", "36h")
	t.Setenv("RETENTION_BATCH_SIZE", "123")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)
	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 36*time.Hour, cfg.MaxAge)
	require.Equal(t, 123, cfg.BatchSize)
}
