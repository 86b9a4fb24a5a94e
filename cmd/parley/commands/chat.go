package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"parley/internal/app"
	"parley/internal/domain"
)

// chat <peer>: log in, fetch the peer's key, settle a secret, then send
// each stdin line as a message and print what arrives.
//
// Exactly one side should propose the secret (--secret or --propose); the
// other waits for it. If both propose, each keeps the other's secret and
// messages will not decrypt until one side proposes again.
func chatCmd() *cobra.Command {
	var (
		secret  string
		propose bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "chat <peer>",
		Short: "Chat with a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassword(); err != nil {
				return err
			}
			peer := domain.PeerID(args[0])
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			out := cmd.OutOrStdout()

			dialCtx, dialCancel := context.WithTimeout(ctx, timeout)
			tr, err := wire.Dial(dialCtx)
			dialCancel()
			if err != nil {
				return err
			}
			defer tr.Close()

			sessions := make(chan domain.PeerSession, 8)
			client := app.NewClient(wire, tr, app.Handlers{
				Delivered: func(d domain.DeliveredMessage) { printDelivered(out, d) },
				Session: func(ps domain.PeerSession) {
					if ps.Peer == peer {
						select {
						case sessions <- ps:
						default:
						}
					}
				},
				Peers: func(p []domain.PeerID) {
					fmt.Fprintf(out, "* online: %s\n", joinPeers(p))
				},
				RelayError: func(e string) { fmt.Fprintf(out, "* relay: %s\n", e) },
			})
			if err := client.Login(password); err != nil {
				return err
			}

			// Run must be stopped before Logout wipes the keys it uses.
			runErr := make(chan error, 1)
			stopped := make(chan struct{})
			go func() {
				runErr <- client.Run(ctx)
				close(stopped)
			}()
			defer func() {
				cancel()
				<-stopped
				_ = client.Logout()
			}()

			if err := negotiate(ctx, client, peer, secret, propose, sessions, timeout, out); err != nil {
				return err
			}
			fmt.Fprintf(out, "* ready to chat with %s (/peers, /quit)\n", peer)

			lines := make(chan string)
			go readLines(cmd.InOrStdin(), lines)
			for {
				select {
				case <-ctx.Done():
					return nil
				case err := <-runErr:
					return err
				case line, ok := <-lines:
					if !ok || line == "/quit" {
						return nil
					}
					if err := chatLine(ctx, client, peer, line); err != nil {
						fmt.Fprintf(out, "* %v\n", err)
					}
				}
			}
		},
	}
	f := cmd.Flags()
	f.StringVar(&secret, "secret", "", "propose this session secret")
	f.BoolVar(&propose, "propose", false, "propose a random session secret")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the peer during setup")
	return cmd
}

// negotiate fetches the peer key, then either proposes a secret or waits
// for one.
func negotiate(
	ctx context.Context,
	client *app.Client,
	peer domain.PeerID,
	secret string,
	propose bool,
	sessions <-chan domain.PeerSession,
	timeout time.Duration,
	out io.Writer,
) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.RequestKey(ctx, peer); err != nil {
		return err
	}
	if err := waitFor(ctx, client, peer, sessions, func(ps domain.PeerSession) bool {
		return ps.State.HasPeerKey() || ps.State == domain.StateSecretReceived
	}); err != nil {
		return fmt.Errorf("waiting for %s's public key: %w", peer, err)
	}
	if ps, ok := client.Session(peer); ok && ps.PublicKeyPEM != "" {
		fmt.Fprintf(out, "* %s's key fingerprint: %s\n", peer, fingerprintOf(ps.PublicKeyPEM))
	}

	if secret != "" || propose {
		s, err := client.ProposeSecret(ctx, peer, secret)
		if err != nil {
			return err
		}
		if secret == "" {
			fmt.Fprintf(out, "* proposed secret %s\n", s)
		}
		return nil
	}

	fmt.Fprintf(out, "* waiting for %s to propose a secret\n", peer)
	if err := waitFor(ctx, client, peer, sessions, func(ps domain.PeerSession) bool {
		return ps.HasSecret()
	}); err != nil {
		return fmt.Errorf("waiting for a secret from %s: %w", peer, err)
	}
	return nil
}

func waitFor(
	ctx context.Context,
	client *app.Client,
	peer domain.PeerID,
	sessions <-chan domain.PeerSession,
	done func(domain.PeerSession) bool,
) error {
	if ps, ok := client.Session(peer); ok && done(ps) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ps := <-sessions:
			if done(ps) {
				return nil
			}
		}
	}
}

func chatLine(ctx context.Context, client *app.Client, peer domain.PeerID, line string) error {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return nil
	case line == "/peers":
		return client.ListPeers(ctx)
	case strings.HasPrefix(line, "/"):
		return errors.New("unknown command")
	}
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := client.SendMessage(sendCtx, peer, line)
	return err
}

func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines <- sc.Text()
	}
}

func printDelivered(out io.Writer, d domain.DeliveredMessage) {
	mark := ""
	if !d.Verified {
		mark = " (!)"
	}
	fmt.Fprintf(out, "[%s]%s %s\n", d.From, mark, d.Text)
}

func joinPeers(p []domain.PeerID) string {
	s := make([]string, len(p))
	for i, id := range p {
		s[i] = string(id)
	}
	return strings.Join(s, ", ")
}
