package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blorm-network/zerepy/internal/config"
	"github.com/blorm-network/zerepy/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show zerepy paths, agents, and configuration summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("ZerePy %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Home:        %s\n", paths.Base)
			fmt.Printf("Config:      %s\n", paths.Config)
			fmt.Printf("Agents dir:  %s\n", paths.AgentsDir(&cfg))
			fmt.Printf("Credentials: %s\n", paths.Credentials)
			fmt.Println()

			names, err := agentStore().List()
			if err != nil {
				return err
			}
			if len(names) > 0 {
				fmt.Printf("Agents:  %s\n", strings.Join(names, ", "))
			} else {
				fmt.Println("Agents:  (none)")
			}
			if cfg.DefaultAgent != "" {
				fmt.Printf("Default: %s\n", cfg.DefaultAgent)
			} else {
				fmt.Println("Default: (none; run load-agent)")
			}

			if cfg.MemoryEnabled() {
				fmt.Printf("Memory:  %s\n", paths.MemoryDBPath(&cfg))
			} else {
				fmt.Println("Memory:  disabled")
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}
}
