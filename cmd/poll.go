package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gundriai/merovote-app/internal/domain"
)

var pollJSON bool

var pollCmd = &cobra.Command{
	Use:   "poll <poll-id>",
	Short: "Show a single poll with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRuntime()
		if err != nil {
			return err
		}
		defer r.Close()

		poll, err := r.session.Poll(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetch poll: %w", err)
		}

		if pollJSON {
			return json.NewEncoder(os.Stdout).Encode(poll)
		}

		now := time.Now()
		printPollSummary(poll, now)
		if poll.Description != "" {
			fmt.Println(poll.Description)
			fmt.Println()
		}

		if len(poll.Comments) == 0 {
			fmt.Println("No comments yet.")
			return nil
		}
		fmt.Printf("%d comments:\n", len(poll.Comments))
		for i := range poll.Comments {
			c := &poll.Comments[i]
			fmt.Printf("  [%s] %s (%s)\n", c.ID, c.Author, domain.TimeAgo(c.CreatedAt, now))
			fmt.Printf("    %s\n", c.Content)
			fmt.Printf("    gajjab %d | bekar %d | furious %d\n",
				c.ReactionCount(domain.ReactionGajjab),
				c.ReactionCount(domain.ReactionBekar),
				c.ReactionCount(domain.ReactionFurious))
		}
		return nil
	},
}

func init() {
	pollCmd.Flags().BoolVar(&pollJSON, "json", false, "print the raw poll snapshot as JSON")
	rootCmd.AddCommand(pollCmd)
}
