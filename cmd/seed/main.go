package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"onsamuse/internal/cache"
	"onsamuse/internal/config"
	"onsamuse/internal/game"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Default()
	cobra.CheckErr(newCmd(cfg).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "seed [mission...]",
		Short: "Seed the Zoom mission pool. Without arguments the built-in missions are used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			missions := args
			if len(missions) == 0 {
				missions = game.DefaultMissions
			}
			return seed(cmd.Context(), cfg, missions, replace)
		},
	}

	cmd.Flags().StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the pool instead of appending")

	return cmd
}

func seed(ctx context.Context, cfg *config.Config, missions []string, replace bool) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress()})
	defer rdb.Close()

	pool := cache.NewMissionCache(rdb)
	if replace {
		if err := pool.Replace(ctx, missions); err != nil {
			return fmt.Errorf("failed to replace missions: %w", err)
		}
	} else if err := pool.Add(ctx, missions...); err != nil {
		return fmt.Errorf("failed to add missions: %w", err)
	}

	all, err := pool.List(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d missions, pool now holds %d:\n", len(missions), len(all))
	for _, m := range all {
		fmt.Printf("  - %s\n", m)
	}
	return nil
}
