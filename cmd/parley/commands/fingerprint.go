package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"parley/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := wire.Identity.Fingerprint()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", fp)
			return nil
		},
	}
}

func unlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Unlock the identity and check that the key pair matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassword(); err != nil {
				return err
			}
			id, err := wire.Identity.Login(password)
			if err != nil {
				return err
			}
			defer id.Wipe()
			fmt.Fprintf(cmd.OutOrStdout(), "Unlocked. Fingerprint: %s\n", id.Fingerprint())
			return nil
		},
	}
}

func fingerprintOf(pemText string) string {
	if fp := crypto.FingerprintPEM(pemText); fp != "" {
		return fp
	}
	return "unreadable"
}
