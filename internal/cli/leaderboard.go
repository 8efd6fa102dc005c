package cli

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"eduquiz/internal/config"
	infraredis "eduquiz/internal/infra/redis"
)

// NewLeaderboardCmd prints the redis-backed leaderboard for a quiz.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var quizID string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard for a quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Redis.Addr == "" {
				return fmt.Errorf("redis addr not configured")
			}

			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer client.Close()

			ttl := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
			store := infraredis.NewLeaderboardStore(client, ttl)

			entries, err := store.Leaderboard(cmd.Context(), quizID)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no scores recorded")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d. %-24s %d\n", e.Ranking, e.StudentID, e.TotalScore)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz ID")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}
