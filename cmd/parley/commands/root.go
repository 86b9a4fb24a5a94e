package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"parley/internal/app"
	"parley/internal/domain"
)

var (
	home     string
	password string
	relayURL string
	peerID   string
	persist  bool
	logLevel string

	wire *app.Wire
)

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parley",
		Short:         "Signed, encrypted peer-to-peer chat over a relay",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(logLevel); err != nil {
				return err
			}
			if home == "" {
				home = app.DefaultHome()
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			// An unset --relay defers to the saved profile.
			relay := relayURL
			if !cmd.Flags().Changed("relay") {
				relay = ""
			}
			w, err := app.NewWire(app.Config{
				Home:            home,
				RelayURL:        relay,
				PeerID:          domain.PeerID(peerID),
				PersistSessions: persist,
			})
			if err != nil {
				return err
			}
			wire = w
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&home, "home", "", "key directory (default ~/.parley)")
	pf.StringVarP(&password, "password", "p", "", "password protecting the private key")
	pf.StringVar(&relayURL, "relay", app.DefaultRelayURL, "relay WebSocket URL")
	pf.StringVar(&peerID, "as", "", "your peer id on the relay")
	pf.BoolVar(&persist, "persist", false, "keep peer keys and secrets between runs, sealed under the password")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		unlockCmd(),
		exportCmd(),
		importCmd(),
		peersCmd(),
		chatCmd(),
	)
	return root
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

func requirePassword() error {
	if password == "" {
		return fmt.Errorf("password required (-p)")
	}
	return nil
}
