package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ashureev/helpdesk-bot/internal/agent"
	"github.com/ashureev/helpdesk-bot/internal/faq"
	"github.com/spf13/cobra"
)

const answerPreviewLen = 50

func newListCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the FAQ file and its entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, statErr := os.Stat(*path)
			fmt.Fprintf(out, "FAQ file: %s\n", *path)
			fmt.Fprintf(out, "File exists: %t\n", statErr == nil)
			if statErr != nil {
				return nil
			}

			entries, err := faq.Read(*path)
			if err != nil {
				return fmt.Errorf("read %s: %w", *path, err)
			}
			fmt.Fprintf(out, "Loaded %d FAQs\n", len(entries))
			for i, entry := range entries {
				fmt.Fprintf(out, "%d. Q: %s\n   A: %s\n", i+1, entry.Question, preview(entry.Answer))
			}
			return nil
		},
	}
}

func newInitCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the sample FAQs when no file exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := faq.WriteSamples(*path); err != nil {
				if errors.Is(err, faq.ErrExists) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, leaving it unchanged\n", *path)
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sample FAQs to %s\n", len(faq.Samples), *path)
			return nil
		},
	}
}

func newMatchCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "match <query...>",
		Short: "Score every FAQ against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := faq.Read(*path)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("no FAQ file at %s (run faqctl init)", *path)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", *path, err)
			}

			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			for i, entry := range entries {
				score := agent.ScoreFAQ(query, entry.Question)
				fmt.Fprintf(out, "%d. score=%d (category=%d overlap=%d) %s\n",
					i+1, score.Total(), score.Category, score.Overlap, entry.Question)
			}

			if answer, ok := agent.MatchFAQ(query, entries); ok {
				fmt.Fprintf(out, "Match: %s\n", answer)
			} else {
				fmt.Fprintln(out, "No match")
			}
			return nil
		},
	}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= answerPreviewLen {
		return s
	}
	return string(r[:answerPreviewLen]) + "..."
}
