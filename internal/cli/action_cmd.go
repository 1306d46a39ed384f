package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blorm-network/zerepy/internal/connection"
)

func newActionCmd() *cobra.Command {
	var agentName string

	cmd := &cobra.Command{
		Use:   "action <connection> <action> [args...]",
		Short: "Run a single connection action",
		Long: "Runs one action against a connection from the selected agent's profile.\n" +
			"Positional args bind to the action's parameters in declaration order;\n" +
			"see 'zerepy connection actions <name>' for the parameter list.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveAgentName(agentName)
			if err != nil {
				return err
			}
			profile, err := agentStore().Load(name)
			if err != nil {
				return err
			}

			connName, actionName := args[0], args[1]
			actionArgs, err := bindActionArgs(connName, actionName, args[2:])
			if err != nil {
				return err
			}

			manager := newManager(profile)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := manager.StartPlatforms(ctx); err != nil {
				return err
			}
			defer manager.StopPlatforms(context.Background())

			result, err := manager.Perform(ctx, connName, actionName, actionArgs)
			if err != nil {
				return err
			}
			fmt.Println(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "agent whose profile provides the connection (default from config)")
	return cmd
}

// bindActionArgs maps positional CLI args onto the action's declared params.
// Unknown actions pass through empty so Perform can report them.
func bindActionArgs(kind, actionName string, positional []string) (map[string]string, error) {
	var params []connection.Param
	found := false
	for _, a := range connection.Actions(kind) {
		if a.Name == actionName {
			params = a.Params
			found = true
			break
		}
	}

	args := make(map[string]string, len(positional))
	if !found {
		return args, nil
	}
	if len(positional) > len(params) {
		return nil, fmt.Errorf("action %q takes at most %d arguments", actionName, len(params))
	}
	for i, v := range positional {
		args[params[i].Name] = v
	}
	return args, nil
}
