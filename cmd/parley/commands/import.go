package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"parley/internal/domain"
)

// import --public f --private f: install key files after checking that the
// password unlocks them.
func importCmd() *cobra.Command {
	var pubPath, privPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Install a public.pem / private.pem pair created elsewhere",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassword(); err != nil {
				return err
			}
			pub, err := os.ReadFile(pubPath)
			if err != nil {
				return err
			}
			priv, err := os.ReadFile(privPath)
			if err != nil {
				return err
			}
			kf := domain.KeyFile{PublicKeyPEM: string(pub), PrivateKeyPEM: string(priv)}

			id, err := wire.Identity.Unlock(password, kf)
			if err != nil {
				return err
			}
			defer id.Wipe()

			if err := wire.KeyFiles.SaveKeyFile(kf); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported. Fingerprint: %s\n", id.Fingerprint())
			return nil
		},
	}
	cmd.Flags().StringVar(&pubPath, "public", "public.pem", "public key file")
	cmd.Flags().StringVar(&privPath, "private", "private.pem", "sealed private key file")
	return cmd
}
