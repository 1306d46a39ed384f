package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blorm-network/zerepy/internal/connection"
)

func newConnectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connection",
		Short: "Inspect an agent's connections",
	}

	cmd.AddCommand(newConnectionListCmd())
	cmd.AddCommand(newConnectionActionsCmd())
	return cmd
}

func newConnectionListCmd() *cobra.Command {
	var agentName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the selected agent's connections and their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveAgentName(agentName)
			if err != nil {
				return err
			}
			profile, err := agentStore().Load(name)
			if err != nil {
				return err
			}

			for _, info := range newManager(profile).List() {
				state := "not configured"
				if info.Configured {
					state = "configured"
				}
				fmt.Printf("  %-12s %-8s %s\n", info.Name, info.Class, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "agent whose connections to list (default from config)")
	return cmd
}

func newConnectionActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions <name>",
		Short: "Show the actions a connection kind supports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := connection.Actions(args[0])
			if len(actions) == 0 {
				return fmt.Errorf("unknown connection kind %q", args[0])
			}

			fmt.Printf("%s actions:\n", connection.DisplayName(args[0]))
			for _, a := range actions {
				fmt.Printf("  %s: %s\n", a.Name, a.Description)
				for _, p := range a.Params {
					req := "optional"
					if p.Required {
						req = "required"
					}
					fmt.Printf("      %-14s (%s) %s\n", p.Name, req, p.Description)
				}
			}
			return nil
		},
	}
}
