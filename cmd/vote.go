package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gundriai/merovote-app/internal/domain"
	"github.com/gundriai/merovote-app/internal/session"
)

var (
	voteType      string
	voteCandidate string
)

var voteCmd = &cobra.Command{
	Use:   "vote <poll-id>",
	Short: "Cast a vote on a poll",
	Long: `Cast a vote on a poll. Reaction polls take --type with the option's
vote type (for example gajjab), one-vs-one polls take --candidate with the
candidate id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (voteType == "") == (voteCandidate == "") {
			return fmt.Errorf("exactly one of --type or --candidate is required")
		}

		r, err := newRuntime()
		if err != nil {
			return err
		}
		defer r.Close()

		poll, err := r.session.Poll(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetch poll: %w", err)
		}

		result := r.session.CastVote(cmd.Context(), poll, session.Choice{
			VoteType:    voteType,
			CandidateID: voteCandidate,
		})
		message, ok := voteFeedback(result)
		fmt.Println(message)
		if !ok {
			return result.Err()
		}

		printPollSummary(poll, time.Now())
		return nil
	},
}

// voteFeedback maps a vote result onto the single line shown to the user.
func voteFeedback(result session.VoteResult) (string, bool) {
	switch result.Outcome {
	case session.OutcomeSuccess:
		return "Vote recorded.", true
	case session.OutcomeAlreadyVoted:
		return "You have already voted on this poll.", false
	case session.OutcomePollExpired:
		return "This poll has ended.", false
	case session.OutcomeOptionMissing:
		return "That option does not exist on this poll.", false
	case session.OutcomeAuthRequired:
		return "Please log in to vote on this poll.", false
	case session.OutcomeInFlight:
		return "A vote for this poll is already being submitted.", false
	case session.OutcomeRejected:
		switch result.Reason {
		case domain.ReasonAlreadyVoted:
			return "You have already voted on this poll.", false
		case domain.ReasonPollNotActive:
			return "This poll is not active.", false
		case domain.ReasonPollNotFound:
			return "Poll not found.", false
		}
		if result.Message != "" {
			return fmt.Sprintf("Vote rejected: %s", result.Message), false
		}
		return "Vote rejected.", false
	default:
		return "Network error, please try again.", false
	}
}

func init() {
	voteCmd.Flags().StringVar(&voteType, "type", "", "vote type of the option to vote for")
	voteCmd.Flags().StringVar(&voteCandidate, "candidate", "", "candidate id to vote for")
	rootCmd.AddCommand(voteCmd)
}
