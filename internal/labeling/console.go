package labeling

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

const prompt = "Enter sentiment score (1-10), 'skip' to skip, or 'exit' to quit: "

// Run is the console loop. It returns when every record has been visited,
// the operator exits, input reaches EOF, or ctx is cancelled. The last three
// persist the store once before returning.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	_, total := s.Progress()
	for {
		rec, ok := s.Next()
		if !ok {
			fmt.Fprintln(out, "Pseudo-labeling process completed successfully!")
			return nil
		}

		fmt.Fprintf(out, "\nReview %d/%d:\n", rec.Row+1, total)
		if rec.Display != "" {
			fmt.Fprintln(out, rec.Display)
		} else {
			fmt.Fprintln(out, rec.Text)
		}

		for answered := false; !answered; {
			fmt.Fprint(out, prompt)

			var line string
			select {
			case <-ctx.Done():
				fmt.Fprintln(out)
				return s.exit(out)
			case line, ok = <-lines:
				if !ok {
					fmt.Fprintln(out)
					return s.exit(out)
				}
			}

			cmd, err := ParseCommand(line)
			switch {
			case errors.Is(err, errOutOfRange):
				fmt.Fprintln(out, "Invalid input. Please enter a number between 1 and 10.")
			case err != nil:
				fmt.Fprintln(out, "Invalid input. Please enter a number between 1 and 10, 'skip', or 'exit'.")
			case cmd.Kind == CommandExit:
				return s.exit(out)
			case cmd.Kind == CommandSkip:
				s.Skip()
				fmt.Fprintln(out, "Review skipped.")
				answered = true
			default:
				if err := s.label(cmd.Label); err != nil {
					return err
				}
				labeled, _ := s.Progress()
				fmt.Fprintf(out, "Sentiment '%d' saved.\n", cmd.Label)
				fmt.Fprintf(out, "Progress: %d out of %d reviews labeled.\n", labeled, total)
				answered = true
			}
		}
	}
}

func (s *Session) exit(out io.Writer) error {
	fmt.Fprintln(out, "Exiting labeling process.")
	if err := s.Exit(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Progress saved.")
	return nil
}
