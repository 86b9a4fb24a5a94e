package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"parley/internal/app"
	"parley/internal/domain"
)

// peers: connect, ask the relay who is online, print and exit.
func peersCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "peers",
		Short: "List peers connected to the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			tr, err := wire.Dial(ctx)
			if err != nil {
				return err
			}
			defer tr.Close()

			got := make(chan []domain.PeerID, 1)
			client := app.NewClient(wire, tr, app.Handlers{
				Peers: func(p []domain.PeerID) { got <- p },
			})
			go func() { _ = client.Run(ctx) }()

			if err := client.ListPeers(ctx); err != nil {
				return err
			}
			select {
			case peers := <-got:
				out := cmd.OutOrStdout()
				for _, p := range peers {
					fmt.Fprintln(out, p)
				}
				return nil
			case <-ctx.Done():
				return fmt.Errorf("relay did not answer: %w", ctx.Err())
			}
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the relay")
	return cmd
}
