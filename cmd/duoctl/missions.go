package main

import (
	"github.com/spf13/cobra"
)

func newMissionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missions",
		Short: "List the Zoom mission pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			missions, err := c.Missions(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range missions {
				printf("- %s\n", m)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <mission>",
		Short: "Add a mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			return c.AddMission(cmd.Context(), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <mission>",
		Short: "Remove every copy of a mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			return c.RemoveMission(cmd.Context(), args[0])
		},
	})

	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [zoom|meme]",
		Short: "Show archived rounds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			game := ""
			if len(args) == 1 {
				game = args[0]
			}
			records, err := c.History(cmd.Context(), game, limit)
			if err != nil {
				return err
			}
			for _, r := range records {
				switch r.Game {
				case "zoom":
					verdict := "missed"
					if r.Valid {
						verdict = "found"
					}
					printf("%s zoom  %s photographed %q, %s %s (%q)\n", r.Date, r.Author, r.Mission, r.Guesser, verdict, r.Guess)
				default:
					printf("%s %-5s scores %v\n", r.Date, r.Game, r.Scores)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of rounds")
	return cmd
}
