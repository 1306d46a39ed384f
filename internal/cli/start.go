package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blorm-network/zerepy/internal/agent"
	"github.com/blorm-network/zerepy/internal/hooks"
)

func newStartCmd() *cobra.Command {
	var (
		agentName string
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run an agent's autonomous loop until interrupted",
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

			manager := newManager(profile)

			hookMgr := hooks.NewManager(log)
			hookMgr.On(hooks.EventActionCompleted, "console", func(_ context.Context, p hooks.Payload) error {
				fmt.Printf("[%v] %v\n", p.Data["task"], p.Data["result"])
				return nil
			})
			hookMgr.On(hooks.EventActionFailed, "console", func(_ context.Context, p hooks.Payload) error {
				fmt.Printf("[%v] failed: %v\n", p.Data["task"], p.Data["error"])
				return nil
			})
			for _, event := range hooks.AllEvents {
				hookMgr.On(event, "debug-log", func(_ context.Context, p hooks.Payload) error {
					log.Debug().Str("event", p.Event).Fields(p.Data).Msg("loop event")
					return nil
				})
			}

			loop, err := agent.NewLoop(profile, manager, log, agent.LoopOptions{
				Seed:  seed,
				Hooks: hookMgr,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := manager.StartPlatforms(ctx); err != nil {
				return err
			}
			defer manager.StopPlatforms(context.Background())

			fmt.Printf("Starting %s; press Ctrl+C to stop.\n", profile.Name)
			return loop.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "agent to run (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "task selection seed (0 seeds from the clock)")

	return cmd
}
