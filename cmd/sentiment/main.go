package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/sentiment/internal/classifier"
	"github.com/pbaille/sentiment/internal/config"
	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/lexicon"
	"github.com/pbaille/sentiment/internal/scoring"
	"github.com/pbaille/sentiment/internal/store"
)

var (
	dbPath     string
	configPath string
	logger     = log.New(os.Stderr, "sentiment: ", log.LstdFlags)
)

func main() {
	// Default journal location
	home, _ := os.UserHomeDir()
	defaultDB := filepath.Join(home, ".sentiment", "journal.db")

	rootCmd := &cobra.Command{
		Use:           "sentiment",
		Short:         "Customer feedback pseudo-labeling and sentiment scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "journal database path")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "JSON config file")

	rootCmd.AddCommand(cleanCmd())
	rootCmd.AddCommand(sampleCmd())
	rootCmd.AddCommand(labelCmd())
	rootCmd.AddCommand(classesCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(vaderCmd())
	rootCmd.AddCommand(reviewsCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// getJournal opens the journal, creating its directory
func getJournal() (*store.Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.OpenJournal(dbPath)
}

// optionalJournal returns nil with a warning when the journal cannot be opened
func optionalJournal() *store.Journal {
	j, err := getJournal()
	if err != nil {
		logger.Printf("warning: journal unavailable, history not recorded: %v", err)
		return nil
	}
	return j
}

// loadTable reads a local file or an s3:// URI
func loadTable(ctx context.Context, cfg config.Config, path string) (*dataset.Table, error) {
	var remote dataset.ObjectGetter
	if _, _, ok := dataset.ParseS3URI(path); ok {
		s3c, err := dataset.NewS3(ctx, cfg.S3.Region, cfg.S3.Endpoint)
		if err != nil {
			return nil, err
		}
		remote = s3c
	}
	return dataset.Load(ctx, path, remote, dataset.ReadOptions{})
}

// buildPredictor loads the text classifier selected by backend
func buildPredictor(cfg config.Config) (scoring.Predictor, error) {
	switch cfg.Classifier.Backend {
	case config.BackendArtifacts:
		p, err := classifier.LoadArtifacts(cfg.Classifier.ArtifactsDir, classifier.LoadOptions{
			VoyageAPIKey: cfg.VoyageAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("load model artifacts from %s: %w", cfg.Classifier.ArtifactsDir, err)
		}
		return p, nil
	case config.BackendAnthropic:
		return classifier.NewAnthropic(cfg.AnthropicAPIKey, cfg.Classifier.Model)
	case config.BackendOpenAI:
		return classifier.NewOpenAI(cfg.OpenAIAPIKey, cfg.Classifier.Model)
	case config.BackendVader:
		return lexicon.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, cfg.Classifier.Backend)
	}
}

// defaultOutput derives "<base>_<suffix><ext>" next to input
func defaultOutput(input, suffix string) string {
	if _, key, ok := dataset.ParseS3URI(input); ok {
		input = filepath.Base(key)
	}
	ext := filepath.Ext(input)
	if strings.EqualFold(ext, ".xlsx") || strings.EqualFold(ext, ".xls") {
		ext = ".csv"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_" + suffix + ext
}

func notFound(err error, path string) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		fmt.Printf("File '%s' not found.\n", path)
	}
	return err
}
