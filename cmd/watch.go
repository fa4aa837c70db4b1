package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gundriai/merovote-app/internal/events"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream client events from Redis",
	Long: `Subscribe to the Redis event channel and print vote, comment and
reaction events published by other MeroVote clients as they happen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRuntime()
		if err != nil {
			return err
		}
		defer r.Close()

		if r.cfg.Redis.Host == "" {
			return fmt.Errorf("redis.host is required for watch")
		}
		client, err := r.connectRedis()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s (ctrl-c to stop)\n", events.Channel)
		err = events.Consume(ctx, client, r.zapLogger, func(event events.RawEvent) {
			fmt.Printf("%-16s %s\n", event.Type, string(event.Data))
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
