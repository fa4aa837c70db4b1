package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gundriai/merovote-app/internal/domain"
)

var commentAuthor string

var commentCmd = &cobra.Command{
	Use:   "comment <poll-id> <content>",
	Short: "Post a comment on a poll",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRuntime()
		if err != nil {
			return err
		}
		defer r.Close()

		err = r.session.PostComment(cmd.Context(), args[0], args[1], commentAuthor)
		switch {
		case err == nil:
			fmt.Println("Comment posted.")
			return nil
		case errors.Is(err, domain.ErrWordLimitExceeded):
			return fmt.Errorf("comment exceeds the %d word limit", domain.CommentWordLimit)
		case errors.Is(err, domain.ErrInvalidInput):
			return fmt.Errorf("comment content must not be empty")
		case errors.Is(err, domain.ErrAuthenticationRequired):
			return fmt.Errorf("please log in to comment on this poll")
		default:
			return fmt.Errorf("post comment: %w", err)
		}
	},
}

var reactCmd = &cobra.Command{
	Use:   "react <poll-id> <comment-id> <reaction>",
	Short: "React to a comment",
	Long:  `React to a comment with one of: gajjab, bekar, furious.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := domain.ReactionKind(args[2])
		if !kind.Valid() {
			return fmt.Errorf("reaction must be one of gajjab, bekar or furious")
		}

		r, err := newRuntime()
		if err != nil {
			return err
		}
		defer r.Close()

		err = r.session.React(cmd.Context(), args[0], args[1], kind)
		switch {
		case err == nil:
			fmt.Println("Reaction recorded.")
			return nil
		case errors.Is(err, domain.ErrAuthenticationRequired):
			return fmt.Errorf("please log in to react to comments")
		default:
			return fmt.Errorf("react to comment: %w", err)
		}
	},
}

func init() {
	commentCmd.Flags().StringVar(&commentAuthor, "author", "", "author name (defaults to Anonymous)")
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(reactCmd)
}
