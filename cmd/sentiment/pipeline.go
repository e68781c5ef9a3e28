package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/sentiment/internal/api"
	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/domain"
	"github.com/pbaille/sentiment/internal/labeling"
	"github.com/pbaille/sentiment/internal/metrics"
	"github.com/pbaille/sentiment/internal/scoring"
	"github.com/pbaille/sentiment/internal/store"
)

func labelCmd() *cobra.Command {
	var (
		noJournal   bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "label [sample file]",
		Short: "Pseudo-label feedback interactively (1-10)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := args[0]

			ls, err := store.OpenLabelStore(path, store.Columns{
				Text:    cfg.Columns.Text,
				Rating:  cfg.Columns.Rating,
				Label:   cfg.Columns.Label,
				Display: cfg.Columns.Display,
			})
			if err != nil {
				return notFound(err, path)
			}

			collector := metrics.New()
			opts := []labeling.Option{labeling.WithLogger(logger), labeling.WithObserver(collector)}
			if !noJournal {
				if j := optionalJournal(); j != nil {
					defer j.Close()
					opts = append(opts, labeling.WithRecorder(j))
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session := labeling.NewSession(ls, opts...)
			if err := session.Run(ctx, os.Stdin, os.Stdout); err != nil {
				return err
			}
			return dumpMetrics(collector, metricsFile)
		},
	}

	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "do not record labels in the journal")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	return cmd
}

func scoreCmd() *cobra.Command {
	var (
		output      string
		reportsDir  string
		weight      float64
		policy      string
		backend     string
		artifacts   string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "score [input]",
		Short: "Score feedback text and blend it with star ratings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("weight") {
				cfg.Scoring.WeightText = weight
			}
			if policy != "" {
				cfg.Scoring.RatingPolicy = policy
			}
			if backend != "" {
				cfg.Classifier.Backend = backend
			}
			if artifacts != "" {
				cfg.Classifier.ArtifactsDir = artifacts
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			input := args[0]
			ctx := cmd.Context()

			opts, err := cfg.ScoringOptions()
			if err != nil {
				return err
			}
			predictor, err := buildPredictor(cfg)
			if err != nil {
				return err
			}
			sc, err := scoring.NewContext(predictor, opts)
			if err != nil {
				return err
			}

			fmt.Printf("Loading data from %s\n", input)
			t, err := loadTable(ctx, cfg, input)
			if err != nil {
				return err
			}

			fmt.Printf("Scoring %d records (backend %s, weight %.2f, %s)\n",
				t.Len(), cfg.Classifier.Backend, opts.WeightText, scoring.ScaleVersion)
			collector := metrics.New()
			summary, err := scoring.ScoreTable(ctx, sc, t, scoring.BatchOptions{
				TextColumn:   cfg.Columns.Text,
				RatingColumn: cfg.Columns.Rating,
				Logger:       logger,
				Observer:     collector,
			})
			if err != nil {
				return err
			}

			if output == "" {
				output = defaultOutput(input, "with_sentiment")
			}
			if err := dataset.WriteFileAtomic(output, t); err != nil {
				return err
			}
			fmt.Printf("Saved scored data to %s\n", output)

			if err := writeReports(reportsDir, summary, cfg.Reports.SampleSize, cfg.Reports.Seed); err != nil {
				return err
			}

			fmt.Printf("\n%s", scoring.StatsReport(summary))

			if j := optionalJournal(); j != nil {
				defer j.Close()
				run := &domain.ScoreRun{
					InputPath:      input,
					OutputPath:     output,
					Backend:        cfg.Classifier.Backend,
					ScaleVersion:   scoring.ScaleVersion,
					WeightText:     opts.WeightText,
					RatingPolicy:   string(opts.RatingPolicy),
					Records:        summary.Records,
					Rejected:       len(summary.Rejected),
					Disagreements:  len(summary.Disagreements),
					TextCounts:     summary.TextCounts,
					CombinedCounts: summary.CombinedCounts,
				}
				if err := j.RecordScoreRun(run); err != nil {
					logger.Printf("warning: record score run: %v", err)
				} else {
					fmt.Printf("Recorded run %s\n", run.ID[:8])
				}
			}
			return dumpMetrics(collector, metricsFile)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "output path (default <input>_with_sentiment)")
	cmd.Flags().StringVar(&reportsDir, "reports", ".", "directory for the difference and stats reports")
	cmd.Flags().Float64Var(&weight, "weight", scoring.DefaultWeightText, "share of the text score in the combined score")
	cmd.Flags().StringVar(&policy, "rating-policy", "", "out-of-range ratings: reject or clamp")
	cmd.Flags().StringVar(&backend, "backend", "", "text classifier: artifacts, anthropic, openai or vader")
	cmd.Flags().StringVar(&artifacts, "models", "", "model artifacts directory")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile when done")
	return cmd
}

// dumpMetrics writes the collector to path when one was given
func dumpMetrics(c *metrics.Collector, path string) error {
	if path == "" {
		return nil
	}
	if err := c.WriteTextfile(path); err != nil {
		return err
	}
	fmt.Printf("Metrics written to %s\n", path)
	return nil
}

// writeReports writes the timestamped disagreement and stats reports
func writeReports(dir string, summary *scoring.Summary, sampleSize int, seed uint64) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	ts := time.Now().Format("20060102_150405")

	samples := scoring.SampleDisagreements(summary.Disagreements, sampleSize, seed)
	diffPath := filepath.Join(dir, fmt.Sprintf("sentiment_differences_%s.txt", ts))
	if err := dataset.WriteTextAtomic(diffPath, scoring.DisagreementReport(samples)); err != nil {
		return err
	}
	fmt.Printf("Saved %d disagreement examples to %s\n", len(samples), diffPath)

	statsPath := filepath.Join(dir, fmt.Sprintf("sentiment_stats_%s.txt", ts))
	if err := dataset.WriteTextAtomic(statsPath, scoring.StatsReport(summary)); err != nil {
		return err
	}
	fmt.Printf("Saved class distribution to %s\n", statsPath)
	return nil
}

func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded scoring runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := getJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.ListScoreRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No scoring runs recorded.")
				return nil
			}

			for _, r := range runs {
				fmt.Printf("%s  %s  %s -> %s\n", r.ID[:8], r.CreatedAt.Format("2006-01-02 15:04"), r.InputPath, r.OutputPath)
				fmt.Printf("  backend=%s weight=%.2f policy=%s scale=%s\n", r.Backend, r.WeightText, r.RatingPolicy, r.ScaleVersion)
				fmt.Printf("  records=%d rejected=%d disagreements=%d\n", r.Records, r.Rejected, r.Disagreements)
				for _, c := range domain.Classes {
					fmt.Printf("  %-8s text=%d combined=%d\n", c, r.TextCounts[c], r.CombinedCounts[c])
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pseudo-label events",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := getJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			events, err := j.ListLabelEvents(limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No labels recorded.")
				return nil
			}

			for _, e := range events {
				fmt.Printf("%s  %s  row %d = %d  (%s)\n",
					e.ID[:8], e.CreatedAt.Format("2006-01-02 15:04"), e.Row+1, e.Label, e.StorePath)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Addr
			}

			deps := api.Deps{
				Metrics: metrics.New(),
				Logger:  logger,
				Backend: cfg.Classifier.Backend,
			}

			opts, err := cfg.ScoringOptions()
			if err != nil {
				return err
			}
			if predictor, err := buildPredictor(cfg); err != nil {
				logger.Printf("warning: /score disabled: %v", err)
			} else if deps.Scoring, err = scoring.NewContext(predictor, opts); err != nil {
				return err
			}

			if j := optionalJournal(); j != nil {
				defer j.Close()
				deps.Journal = j
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return api.New(deps, addr).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
