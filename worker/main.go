// The worker consumes raw reviews from Kafka, runs the same clean/tokenize/
// score steps as the offline pipeline, and indexes the enriched documents
// into Elasticsearch for the API. Messages that cannot be processed go to a
// DLQ topic instead of blocking the partition.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kinolens/review-radar/internal/analyze"
	"github.com/kinolens/review-radar/internal/config"
	"github.com/kinolens/review-radar/internal/dedupe"
	"github.com/kinolens/review-radar/internal/elasticsearch"
	"github.com/kinolens/review-radar/internal/logger"
	"github.com/kinolens/review-radar/internal/models"
	"github.com/kinolens/review-radar/internal/textproc"
)

type reviewIndexer interface {
	IndexReview(ctx context.Context, id string, review models.Review) error
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)
	scorer := analyze.NewScorer()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commits only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", cfg.KafkaTopic+"_dlq"),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, cache, scorer, cfg, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if err := reader.CommitMessages(ctx, msg); err != nil {
					log.Error("commit failed message to dlq", slog.Any("err", err))
				}
			} else {
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
			}
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

func processMessage(ctx context.Context, log *slog.Logger, indexer reviewIndexer, cache *dedupe.Cache, scorer *analyze.Scorer, cfg *config.Worker, msg kafka.Message) error {
	var review models.Review
	if err := json.Unmarshal(msg.Value, &review); err != nil {
		return err
	}

	if strings.TrimSpace(review.ReviewText) == "" {
		return errors.New("empty review text")
	}
	if review.MovieID == "" {
		review.MovieID = "unknown"
	}

	review.CleanText = textproc.Normalize(review.ReviewText, cfg.TokenMinLength)
	// Raw text, not clean_text: the stopword filter strips negators.
	review.SentimentScore = scorer.ScoreReview(review.ReviewText)

	id := textproc.DocumentID(review.MovieID, review.ReviewText, review.Author)

	if cache.IsSeen(id) {
		log.Debug("duplicate review", slog.String("id", id))
		return nil
	}

	if err := indexer.IndexReview(ctx, id, review); err != nil {
		return err
	}

	cache.MarkSeen(id)
	log.Info("indexed review", slog.String("id", id), slog.String("movie_id", review.MovieID))
	return nil
}

func sendToDLQ(ctx context.Context, log *slog.Logger, dlqWriter *kafka.Writer, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := 0; attempt < 5; attempt++ {
		if err := dlqWriter.WriteMessages(ctx, dlqMsg); err == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		} else {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			log.Warn("DLQ write failed, retrying",
				slog.Any("err", err),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				log.Info("context canceled during DLQ retry")
				return false
			}
		}
	}

	return false
}
