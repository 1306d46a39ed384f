package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blorm-network/zerepy/internal/connection"
)

func newConfigureConnectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure-connection <name>",
		Short: "Store credentials for a connection kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			if connection.Kind(kind) == connection.ClassUnknown {
				return fmt.Errorf("unknown connection kind %q", kind)
			}

			fields := connection.CredentialSpec(kind)
			if len(fields) == 0 {
				fmt.Printf("%s needs no credentials.\n", connection.DisplayName(kind))
				return nil
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}
			creds := credentialStore()
			reader := bufio.NewReader(cmd.InOrStdin())

			var required []string
			for _, f := range fields {
				if !f.Optional {
					required = append(required, f.Key)
				}
			}
			if len(required) > 0 && creds.Configured(kind, required) {
				fmt.Printf("%s is already configured. Reconfigure? (y/n): ", connection.DisplayName(kind))
				line, err := reader.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				if !strings.EqualFold(strings.TrimSpace(line), "y") {
					return nil
				}
			}

			for _, f := range fields {
				fmt.Printf("%s: ", f.Prompt)
				line, err := reader.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				value := strings.TrimSpace(line)
				if value == "" {
					if f.Optional {
						continue
					}
					return fmt.Errorf("%s is required", f.Key)
				}
				if err := creds.Set(kind, f.Key, value); err != nil {
					return err
				}
			}

			keys, _ := creds.Keys(kind)
			if len(keys) > 0 {
				fmt.Printf("%s configured (stored: %s).\n", connection.DisplayName(kind), strings.Join(keys, ", "))
			} else {
				fmt.Printf("%s configured.\n", connection.DisplayName(kind))
			}
			return nil
		},
	}
}
