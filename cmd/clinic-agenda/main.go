package main

import (
	"context"
	"fmt"
	"log"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/saudeviva/clinic-agenda/internal/appointment"
	"github.com/saudeviva/clinic-agenda/internal/assistant"
	"github.com/saudeviva/clinic-agenda/internal/cli"
	"github.com/saudeviva/clinic-agenda/internal/config"
	"github.com/saudeviva/clinic-agenda/internal/observability/metrics"
	"github.com/saudeviva/clinic-agenda/internal/scheduling"
	"github.com/saudeviva/clinic-agenda/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("open log file %s: %v", cfg.LogFile, err)
		}
		defer f.Close()
		logger = logging.NewWithWriter(cfg.LogLevel, f)
	}

	hours, err := scheduling.ParseHours(cfg.OpenAt, cfg.CloseAt)
	if err != nil {
		log.Fatalf("invalid business hours: %v", err)
	}

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStoreMetrics(registry)
	schedulerMetrics := metrics.NewSchedulerMetrics(registry)

	store := appointment.NewFileStore(cfg.DataFile, appointment.WithStoreMetrics(storeMetrics))
	scheduler := scheduling.New(store, scheduling.Config{
		Hours:        hours,
		SlotDuration: cfg.SlotDuration,
	}, scheduling.WithLogger(logger), scheduling.WithMetrics(schedulerMetrics))

	ctx := context.Background()
	asst := buildAssistant(ctx, cfg, logger)

	menu := cli.New(os.Stdin, os.Stdout, scheduler, asst, cfg.ClinicName, logger)
	if err := menu.Run(ctx); err != nil {
		logger.Error("menu loop failed", "error", err)
		os.Exit(1)
	}

	dumpMetrics(registry, logger)
}

// buildAssistant wires the LLM collaborator: Bedrock as primary when a model
// is configured, Gemini as fallback (or sole provider). Returns nil when no
// provider is configured, which disables natural-language booking only.
func buildAssistant(ctx context.Context, cfg *config.Config, logger *logging.Logger) assistant.Assistant {
	var primary, fallback assistant.LLMClient

	if cfg.BedrockModelID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Warn("bedrock unavailable", "error", err)
		} else {
			primary = assistant.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
		}
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("gemini unavailable", "error", err)
		} else {
			fallback = gemini
		}
	}

	var llm assistant.LLMClient
	switch {
	case primary != nil:
		llm = assistant.NewFallbackLLMClient(primary, fallback, logger)
	case fallback != nil:
		llm = fallback
	default:
		logger.Info("no LLM provider configured, natural-language booking disabled")
		return nil
	}

	return assistant.NewService(llm, cfg.BedrockModelID, cfg.ClinicName, cfg.DoctorName,
		assistant.WithLogger(logger))
}

// dumpMetrics logs counter totals at exit; the console app has no scrape
// endpoint to expose them on.
func dumpMetrics(registry *prometheus.Registry, logger *logging.Logger) {
	families, err := registry.Gather()
	if err != nil {
		logger.Warn("metrics gather failed", "error", err)
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			labels := ""
			for _, pair := range metric.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", pair.GetName(), pair.GetValue())
			}
			logger.Info("session metric",
				"name", family.GetName()+labels,
				"value", metric.GetCounter().GetValue(),
			)
		}
	}
}
