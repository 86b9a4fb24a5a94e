package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// export: print the public key, and with --private also the sealed private key.
func exportCmd() *cobra.Command {
	var withPrivate bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the PEM-framed key files",
		RunE: func(cmd *cobra.Command, args []string) error {
			kf, err := wire.Identity.KeyFile()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, kf.PublicKeyPEM)
			if withPrivate {
				fmt.Fprint(out, kf.PrivateKeyPEM)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withPrivate, "private", false, "also print the password-sealed private key")
	return cmd
}
