package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"onsamuse/internal/client"
	"onsamuse/internal/model"
)

func newMemeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meme",
		Short: "The meme duel",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the round phase, the turns and the points received",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			status, err := c.TurnStatus(cmd.Context())
			if err != nil {
				return err
			}
			printTurns(status)
			return nil
		},
	})

	var captions []string
	submit := &cobra.Command{
		Use:   "submit <image-url>...",
		Short: "Submit your memes; each --caption fills the top zone of the matching image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := opts.requirePlayer()
			if err != nil {
				return err
			}
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			memes := make([]model.MemeInstance, len(args))
			for i, url := range args {
				memes[i] = model.MemeInstance{URL: url, Inputs: map[string]string{}}
				if i < len(captions) {
					memes[i].Zones = []model.MemeZone{{ID: "top", Width: 100, Height: 20}}
					memes[i].Inputs["top"] = captions[i]
				}
			}
			if err := c.SubmitMemes(cmd.Context(), player, memes); err != nil {
				return err
			}
			printf("submitted %d memes\n", len(memes))
			return nil
		},
	}
	submit.Flags().StringArrayVarP(&captions, "caption", "c", nil, "caption for the next image, repeatable")
	cmd.AddCommand(submit)

	cmd.AddCommand(&cobra.Command{
		Use:   "vote <points>...",
		Short: "Rate each of your opponent's memes from 0 (Nul) to 4 (MDR); the total is sent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := opts.requirePlayer()
			if err != nil {
				return err
			}
			points := make([]int, len(args))
			for i, arg := range args {
				if points[i], err = strconv.Atoi(arg); err != nil {
					return fmt.Errorf("invalid points %q", arg)
				}
			}

			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			status, err := c.TurnStatus(cmd.Context())
			if err != nil {
				return err
			}
			tally, err := opponentTally(status, player, points)
			if err != nil {
				return err
			}
			for i, p := range points {
				printf("meme %d: %s\n", i+1, client.VoteLabels[p])
			}
			if err := c.Vote(cmd.Context(), player, tally.Total); err != nil {
				return err
			}
			printf("sent %d points\n", tally.Total)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear the round (archived first when finished)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			return c.ResetGame(cmd.Context(), "meme")
		},
	})

	return cmd
}

// opponentTally rates every meme of the opponent's turn, one entry of
// points per meme
func opponentTally(status *model.TurnStatus, me model.PlayerID, points []int) (client.VoteTally, error) {
	var opponent *model.MemeTurn
	for _, t := range status.Memes {
		if t.Player != me {
			opponent = t
			break
		}
	}
	if opponent == nil {
		return client.VoteTally{}, fmt.Errorf("no meme turn from your opponent yet")
	}
	if len(points) != len(opponent.Memes) {
		return client.VoteTally{}, fmt.Errorf("%s submitted %d memes, got %d points", opponent.Player, len(opponent.Memes), len(points))
	}

	tally := client.NewVoteTally(len(opponent.Memes))
	for _, p := range points {
		var err error
		if tally, err = tally.Cast(p); err != nil {
			return tally, fmt.Errorf("meme %d: %w", tally.Index+1, err)
		}
	}
	return tally, nil
}

func printTurns(status *model.TurnStatus) {
	printf("phase: %s\n", status.Phase)
	for _, t := range status.Memes {
		printf("  %s submitted %d memes\n", t.Player, len(t.Memes))
	}
	for p, points := range status.Votes {
		printf("  %s received %d points\n", p, points)
	}
	if status.Zoom.HasPendingGame && status.Zoom.Author != nil {
		printf("quick zoom round pending from %s\n", *status.Zoom.Author)
	}
}
