package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/sentiment/internal/cleaning"
	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/domain"
	"github.com/pbaille/sentiment/internal/labeling"
	"github.com/pbaille/sentiment/internal/lexicon"
	"github.com/pbaille/sentiment/internal/sampling"
	"github.com/pbaille/sentiment/internal/scoring"
)

func cleanCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "clean [input]",
		Short: "Drop unusable feedback rows and add lemmatized text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			input := args[0]

			t, err := loadTable(cmd.Context(), cfg, input)
			if err != nil {
				return err
			}

			opts := cleaning.DefaultOptions()
			opts.TextColumn = cfg.Columns.Text
			opts.RatingColumn = cfg.Columns.Rating
			opts.LemmaColumn = cfg.Columns.Display

			cleaned, rep, err := cleaning.Clean(t, opts)
			if err != nil {
				return err
			}

			fmt.Printf("Initial number of records: %d\n", rep.Initial)
			fmt.Println("\nMissing values removed:")
			fmt.Printf("- Feedback missing values: %d\n", rep.MissingFeedback)
			fmt.Printf("- Feedback 'nan' strings: %d\n", rep.NanFeedback)
			fmt.Printf("- Missing ratings: %d\n", rep.MissingRating)
			fmt.Printf("\nDuplicate feedback entries removed: %d\n", rep.Duplicates)
			fmt.Printf("Non-English entries removed: %d\n", rep.NonEnglish)
			fmt.Printf("Empty strings after preprocessing: %d\n", rep.EmptyAfterPrep)
			fmt.Printf("\nFinal number of clean records: %d\n", rep.Final)
			fmt.Printf("Total records removed: %d\n", rep.Removed())
			fmt.Printf("Percentage of data retained: %.2f%%\n", rep.Retained())

			if output == "" {
				output = defaultOutput(input, "cleaned")
			}
			if err := dataset.WriteFileAtomic(output, cleaned); err != nil {
				return err
			}
			fmt.Printf("\nCleaning successful: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "output path (default <input>_cleaned)")
	return cmd
}

func sampleCmd() *cobra.Command {
	var (
		n          int
		seed       uint64
		samplePath string
		restPath   string
	)

	cmd := &cobra.Command{
		Use:   "sample [input]",
		Short: "Draw the pseudo-labeling sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			t, err := loadTable(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}

			sample, rest, err := sampling.Sample(t, min(n, t.Len()), seed)
			if err != nil {
				return err
			}
			if err := dataset.WriteFileAtomic(samplePath, sample); err != nil {
				return err
			}
			if err := dataset.WriteFileAtomic(restPath, rest); err != nil {
				return err
			}

			fmt.Printf("Created sample with %d records\n", sample.Len())
			fmt.Printf("Created unlabeled set with %d records\n", rest.Len())
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "n", "n", sampling.DefaultSampleSize, "sample size")
	cmd.Flags().Uint64Var(&seed, "seed", sampling.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&samplePath, "out", "sample_feedback_data.csv", "sample output path")
	cmd.Flags().StringVar(&restPath, "rest", "feedback_unlabeled.csv", "remaining records output path")
	return cmd
}

func classesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "classes [labeled file]",
		Short: "Derive sentiment classes from pseudo-labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			input := args[0]

			t, err := dataset.ReadFile(input, dataset.ReadOptions{})
			if err != nil {
				return notFound(err, input)
			}

			counts, err := labeling.DeriveClasses(t, cfg.Columns.Label)
			if err != nil {
				return err
			}

			if output == "" {
				output = input
			}
			if err := dataset.WriteFileAtomic(output, t); err != nil {
				return err
			}

			for _, c := range domain.Classes {
				fmt.Printf("  %-8s %d\n", strings.ToLower(c.String()), counts[c])
			}
			fmt.Printf("Sentiment classification complete. Data saved to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "output path (default: overwrite input)")
	return cmd
}

func vaderCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "vader [input]",
		Short: "Score feedback with the VADER lexicon baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			input := args[0]

			t, err := loadTable(cmd.Context(), cfg, input)
			if err != nil {
				return err
			}

			if err := lexicon.New().AnnotateTable(t, cfg.Columns.Text); err != nil {
				return err
			}

			if output == "" {
				output = defaultOutput(input, "vader")
			}
			if err := dataset.WriteFileAtomic(output, t); err != nil {
				return err
			}
			fmt.Printf("Scored %d records: %s\n", t.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "output path (default <input>_vader)")
	return cmd
}

func reviewsCmd() *cobra.Command {
	var (
		output   string
		perClass int
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "reviews [scored file]",
		Short: "Sample scored reviews from each sentiment class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			t, err := loadTable(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Reading data from %s (%d rows)\n", args[0], t.Len())

			columns := []string{
				cfg.Columns.Text,
				cfg.Columns.Rating,
				scoring.ColTextScore,
				scoring.ColCombinedScore,
				scoring.ColTextClass,
				scoring.ColCombinedClass,
			}
			out, counts, err := sampling.ReviewSample(t, scoring.ColTextClass, perClass, seed, columns)
			for _, c := range counts {
				if c.Available == 0 {
					fmt.Printf("Warning: No reviews found for %s sentiment\n", c.Class)
					continue
				}
				fmt.Printf("Sampling %d out of %d %s reviews\n", c.Sampled, c.Available, c.Class)
			}
			if err != nil {
				return err
			}

			if err := dataset.WriteFileAtomic(output, out); err != nil {
				return err
			}
			fmt.Printf("Saved %d reviews to %s\n", out.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "sample_reviews.csv", "output path")
	cmd.Flags().IntVar(&perClass, "per-class", sampling.DefaultPerClass, "reviews per class")
	cmd.Flags().Uint64Var(&seed, "seed", sampling.DefaultSeed, "random seed")
	return cmd
}
