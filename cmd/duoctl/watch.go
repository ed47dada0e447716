package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"onsamuse/internal/client"
	"onsamuse/internal/model"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "watch <zoom|meme>",
		Short:     "Poll a game and print every change",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"zoom", "meme"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			onError := func(err error) { fmt.Fprintf(os.Stderr, "poll failed: %v\n", err) }

			switch args[0] {
			case "zoom":
				var last int64 = -1
				err = client.Poll(ctx, opts.interval, func(ctx context.Context) (*model.SessionView, error) {
					return c.InitZoom(ctx, false)
				}, func(view *model.SessionView) {
					if view.Version != last {
						last = view.Version
						printSession(view.ZoomSession, opts.player)
					}
				}, onError)
			case "meme":
				var last string
				err = client.Poll(ctx, opts.interval, c.TurnStatus, func(status *model.TurnStatus) {
					key := fmt.Sprintf("%s/%d/%v", status.Phase, len(status.Memes), status.Votes)
					if key != last {
						last = key
						printTurns(status)
					}
				}, onError)
			default:
				return fmt.Errorf("unknown game %q", args[0])
			}

			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
