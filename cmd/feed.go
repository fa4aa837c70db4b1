package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gundriai/merovote-app/internal/domain"
)

var (
	feedCategory string
	feedLabel    string
	feedJSON     bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Browse the poll feed",
	Long:  `Fetch the aggregated poll feed, optionally filtered by category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRuntime()
		if err != nil {
			return err
		}
		defer r.Close()

		category := domain.PollCategory{ID: feedCategory, Label: feedLabel}
		if category.Label == "" && category.ID != domain.CategoryAll {
			category.Label = category.ID
		}

		snapshot, err := r.session.Feed(cmd.Context(), category)
		if err != nil {
			return fmt.Errorf("fetch feed: %w", err)
		}

		if feedJSON {
			return json.NewEncoder(os.Stdout).Encode(snapshot)
		}

		fmt.Printf("%d polls, %d votes, %d comments\n\n",
			snapshot.TotalPolls, snapshot.TotalVotes, snapshot.TotalComments)
		now := time.Now()
		for i := range snapshot.Polls {
			printPollSummary(&snapshot.Polls[i], now)
		}
		return nil
	},
}

func printPollSummary(poll *domain.Poll, now time.Time) {
	marker := " "
	if poll.AlreadyVoted() {
		marker = "*"
	}
	fmt.Printf("%s %s  %s\n", marker, poll.ID, poll.Title)
	fmt.Printf("  %s | %s | %d votes | %s\n",
		poll.Type, poll.Category, poll.TotalVotes, domain.TimeRemaining(poll.EndDate, now))

	switch poll.Type {
	case domain.PollTypeOneVsOne:
		pcts := domain.CandidatePercentages(poll.Candidates)
		for i := range poll.Candidates {
			c := &poll.Candidates[i]
			fmt.Printf("    %-20s %3d%% (%d votes)\n", c.Name, pcts[c.ID], c.VoteCount)
		}
	default:
		pcts := domain.OptionPercentages(poll.PollOptions)
		for i := range poll.PollOptions {
			o := &poll.PollOptions[i]
			fmt.Printf("    %-20s %3d%% (%d votes)\n", o.Label, pcts[o.ID], o.VoteCount)
		}
	}
	fmt.Println()
}

func init() {
	feedCmd.Flags().StringVar(&feedCategory, "category", domain.CategoryAll, "category id to filter by")
	feedCmd.Flags().StringVar(&feedLabel, "label", "", "category label to match against poll categories")
	feedCmd.Flags().BoolVar(&feedJSON, "json", false, "print the raw feed snapshot as JSON")
	rootCmd.AddCommand(feedCmd)
}
