// The pipeline binary runs the whole analysis end to end: scrape review
// pages, snapshot the raw table, clean it, tokenize it, score sentiment,
// aggregate, and export the CSV/PNG artifacts the dashboard consumes. Each
// stage fully materializes before the next begins. When Kafka brokers are
// configured the raw reviews are also published for the indexing worker.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/kinolens/review-radar/internal/analyze"
	"github.com/kinolens/review-radar/internal/clean"
	"github.com/kinolens/review-radar/internal/config"
	"github.com/kinolens/review-radar/internal/export"
	"github.com/kinolens/review-radar/internal/logger"
	"github.com/kinolens/review-radar/internal/models"
	"github.com/kinolens/review-radar/internal/scrape"
	"github.com/kinolens/review-radar/internal/textproc"
)

func main() {
	log := logger.New("pipeline")
	cfg, err := config.LoadPipeline()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, log, cfg); err != nil {
		log.Error("pipeline failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, cfg *config.Pipeline) error {
	collector, err := scrape.NewCollector(&cfg.Scrape, log)
	if err != nil {
		return fmt.Errorf("init collector: %w", err)
	}

	// Stage 1: collect.
	raw, err := collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	if err := export.WriteCSV(cfg.RawPath, &raw); err != nil {
		return err
	}
	log.Info("raw snapshot written", slog.String("path", cfg.RawPath), slog.Int("rows", len(raw)))

	if len(cfg.KafkaBrokers) > 0 {
		// One run ID per scrape batch so the worker side can trace every
		// message back to the run that produced it.
		runID := uuid.NewString()
		if err := publishRaw(ctx, cfg, runID, raw); err != nil {
			// Publishing feeds the optional live index; the local artifacts
			// are still produced.
			log.Warn("publish raw reviews failed", slog.Any("err", err))
		} else {
			log.Info("raw reviews published",
				slog.String("topic", cfg.KafkaTopic),
				slog.String("run_id", runID),
				slog.Int("count", len(raw)),
			)
		}
	}

	// Stage 2: clean.
	cleaned := clean.Reviews(raw)
	if err := export.WriteCSV(cfg.CleanedPath, &cleaned); err != nil {
		return err
	}
	log.Info("cleaned snapshot written",
		slog.String("path", cfg.CleanedPath),
		slog.Int("rows", len(cleaned)),
		slog.Int("dropped", len(raw)-len(cleaned)),
	)

	// Stage 3: tokenize.
	for i := range cleaned {
		cleaned[i].CleanText = textproc.Normalize(cleaned[i].ReviewText, cfg.TokenMinLength)
	}

	// Stage 4: sentiment + aggregates.
	analyze.NewScorer().Score(cleaned)
	report := analyze.BuildReport(cleaned, cfg.TopTerms, cfg.HistogramBuckets)

	// Stage 5: final artifacts.
	if err := export.WriteCSV(cfg.FinalPath, &cleaned); err != nil {
		return err
	}
	if err := export.WriteCSV(cfg.HistogramPath, &report.Histogram); err != nil {
		return err
	}
	if err := export.WriteCSV(cfg.MonthlyPath, &report.Monthly); err != nil {
		return err
	}
	if err := export.WriteCSV(cfg.TermsPath, &report.TopTerms); err != nil {
		return err
	}
	correlation := []models.Correlation{report.Correlation}
	if err := export.WriteCSV(cfg.CorrelationPath, &correlation); err != nil {
		return err
	}

	freqs := analyze.TermFrequencies(cleaned)
	if err := export.WriteWordCloud(cfg.WordCloudPath, cfg.WordCloudFont, freqs, cfg.WordCloudTerms); err != nil {
		return err
	}

	log.Info("pipeline finished",
		slog.Int("reviews", len(cleaned)),
		slog.Int("months", len(report.Monthly)),
		slog.Int("correlation_pairs", report.Correlation.Pairs),
		slog.String("wordcloud", cfg.WordCloudPath),
	)

	return nil
}

func publishRaw(ctx context.Context, cfg *config.Pipeline, runID string, reviews []models.Review) error {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic,
		MaxAttempts: 3,
	})
	defer writer.Close()

	msgs := make([]kafka.Message, 0, len(reviews))
	for _, review := range reviews {
		payload, err := json.Marshal(review)
		if err != nil {
			return fmt.Errorf("marshal review: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(review.MovieID),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "run_id", Value: []byte(runID)},
			},
		})
	}

	if len(msgs) == 0 {
		return nil
	}

	return writer.WriteMessages(ctx, msgs...)
}
