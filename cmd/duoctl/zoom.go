package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"onsamuse/internal/model"
)

func newZoomCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zoom",
		Short: "Today's photo guessing session",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show today's session and the weekly ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			view, err := c.InitZoom(cmd.Context(), false)
			if err != nil {
				return err
			}
			printSession(view.ZoomSession, opts.player)
			printRanking(view.WeeklyRanking)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start today's round",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return zoomAction(cmd, opts, &model.ActionRequest{Action: model.ActionStartGame})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "photo <file|url>",
		Short: "Submit the photo (author)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadImage(args[0])
			if err != nil {
				return err
			}
			return zoomAction(cmd, opts, &model.ActionRequest{Action: model.ActionSubmitPhoto, Image: image})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "guess <text>",
		Short: "Submit a guess (guesser)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return zoomAction(cmd, opts, &model.ActionRequest{Action: model.ActionSubmitGuess, Guess: strings.Join(args, " ")})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <true|false>",
		Short: "Accept or reject the guess (author)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			valid, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("validate expects true or false: %w", err)
			}
			return zoomAction(cmd, opts, &model.ActionRequest{Action: model.ActionValidate, IsValid: &valid})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Discard today's session and start a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			view, err := c.InitZoom(cmd.Context(), true)
			if err != nil {
				return err
			}
			printSession(view.ZoomSession, opts.player)
			return nil
		},
	})

	return cmd
}

func zoomAction(cmd *cobra.Command, opts *options, req *model.ActionRequest) error {
	c, err := opts.connect(cmd.Context())
	if err != nil {
		return err
	}
	req.Player = model.PlayerID(opts.player)
	session, err := c.Act(cmd.Context(), req)
	if err != nil {
		return err
	}
	printSession(session, opts.player)
	return nil
}

// loadImage turns a local file into a data URI; anything else is sent as is
func loadImage(arg string) (string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "data:") {
		return arg, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", arg, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func printSession(s *model.ZoomSession, me string) {
	if s == nil {
		return
	}
	d := s.SharedData
	printf("%s  %s / %s  (v%d)\n", s.Date, s.Status, d.Step, s.Version)
	printf("  mission: %s\n", d.Mission)
	printf("  author:  %s\n", d.Author)
	printf("  guesser: %s\n", d.Guesser)
	if d.Image != nil {
		img := *d.Image
		if len(img) > 60 {
			img = img[:60] + "..."
		}
		printf("  photo:   %s\n", img)
	}
	if d.CurrentGuess != nil {
		printf("  guess:   %s\n", *d.CurrentGuess)
	}
	if hint := nextStep(s, model.PlayerID(me)); hint != "" {
		printf("  next:    %s\n", hint)
	}
}

func nextStep(s *model.ZoomSession, me model.PlayerID) string {
	d := s.SharedData
	switch {
	case s.Status == model.SessionWaitingStart:
		return "duoctl zoom start"
	case s.Status == model.SessionFinished:
		return ""
	case d.Step == model.StepPhoto && (me == "" || me == d.Author):
		return "duoctl zoom photo <file>"
	case d.Step == model.StepGuess && (me == "" || me == d.Guesser):
		return "duoctl zoom guess <text>"
	case d.Step == model.StepValidation && (me == "" || me == d.Author):
		return "duoctl zoom validate <true|false>"
	}
	return "waiting for the other player"
}

func printRanking(ranking map[model.PlayerID]int) {
	if len(ranking) == 0 {
		return
	}
	players := make([]model.PlayerID, 0, len(ranking))
	for p := range ranking {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return ranking[players[i]] > ranking[players[j]] })
	printf("weekly ranking:\n")
	for _, p := range players {
		printf("  %-10s %d\n", p, ranking[p])
	}
}
