package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an identity and store it under the password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassword(); err != nil {
				return err
			}
			if _, ok, err := wire.KeyFiles.LoadKeyFile(); err != nil {
				return err
			} else if ok && !force {
				return fmt.Errorf("identity already exists in %s (use --force to replace it)", wire.KeyFiles.Dir())
			}
			_, fp, err := wire.Identity.CreateIdentity(password)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Identity created in %s\n", wire.KeyFiles.Dir())
			fmt.Fprintf(out, "Fingerprint: %s\n", fp)

			if wire.Config.PeerID != "" {
				if err := wire.SaveProfile(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved profile: %s on %s\n", wire.Config.PeerID, wire.Config.RelayURL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing identity")
	return cmd
}
