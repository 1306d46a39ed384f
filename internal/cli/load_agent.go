package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoadAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load-agent <name>",
		Short: "Load and validate an agent, making it the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := agentStore().Load(args[0])
			if err != nil {
				return err
			}
			if err := setDefaultAgent(profile.Name); err != nil {
				return err
			}
			fmt.Printf("Loaded agent %s (%d connections, %d tasks)\n",
				profile.Name, len(profile.Config), len(profile.Tasks))
			return nil
		},
	}
}
