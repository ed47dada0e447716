package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"onsamuse/internal/client"
	"onsamuse/internal/model"
)

type options struct {
	server   string
	player   string
	password string
	interval time.Duration
}

func main() {
	_ = godotenv.Load()
	cobra.CheckErr(newRootCmd(&options{}).Execute())
}

func newRootCmd(opts *options) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DUOCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "duoctl",
		Short:         "Play the daily Zoom and Meme games from the terminal.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	fs := cmd.PersistentFlags()
	fs.StringVarP(&opts.server, "server", "s", "http://localhost:8080", "game server url (env: DUOCTL_SERVER)")
	fs.StringVarP(&opts.player, "player", "u", "", "your player id (env: DUOCTL_PLAYER)")
	fs.StringVar(&opts.password, "password", "", "household passphrase, logs in when set (env: DUOCTL_PASSWORD)")
	fs.DurationVar(&opts.interval, "interval", client.DefaultPollInterval, "poll interval for watch (env: DUOCTL_INTERVAL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(
		newZoomCmd(opts),
		newMemeCmd(opts),
		newWatchCmd(opts),
		newMissionsCmd(opts),
		newHistoryCmd(opts),
	)

	return cmd
}

// connect returns a client, logged in when a password is configured
func (o *options) connect(ctx context.Context) (*client.Client, error) {
	c := client.New(o.server)
	if o.password != "" {
		if o.player == "" {
			return nil, fmt.Errorf("--player is required to log in")
		}
		if _, err := c.Login(ctx, model.PlayerID(o.player), o.password); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (o *options) requirePlayer() (model.PlayerID, error) {
	if o.player == "" {
		return "", fmt.Errorf("--player is required")
	}
	return model.PlayerID(o.player), nil
}

func printf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}
