package main

import (
	"errors"
	"fmt"

	"veredapos/internal/config"
	"veredapos/internal/infra"
	"veredapos/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var allQueues = []string{worker.QueueInvoice, worker.QueueSync, worker.QueueEmail}

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect and replay dead-lettered jobs (requires REDIS_URL)",
}

var dlqStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many jobs wait in each dead-letter queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rdb, err := openRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		for _, q := range allQueues {
			n, err := worker.DLQLength(ctx, rdb, q)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d\n", q, n)
		}
		return nil
	},
}

var (
	replayQueue string
	replayLimit int
)

var dlqReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Move dead-lettered jobs back onto their queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		queues := allQueues
		if replayQueue != "" {
			queues = []string{replayQueue}
		}

		ctx := cmd.Context()
		rdb, err := openRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		for _, q := range queues {
			n, err := worker.ReplayDLQ(ctx, rdb, q, replayLimit)
			if err != nil {
				return fmt.Errorf("%s: %w", q, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d replayed\n", q, n)
		}
		return nil
	},
}

func openRedis() (*redis.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is not set")
	}
	return infra.NewRedis(cfg.RedisURL)
}

func init() {
	dlqReplayCmd.Flags().StringVar(&replayQueue, "queue", "", "queue to replay, e.g. jobs:sync (default all)")
	dlqReplayCmd.Flags().IntVar(&replayLimit, "limit", 100, "maximum jobs per queue")
	dlqCmd.AddCommand(dlqStatusCmd, dlqReplayCmd)
}
