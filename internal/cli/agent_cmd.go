package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blorm-network/zerepy/internal/agent"
	"github.com/blorm-network/zerepy/internal/connection"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agent profiles",
	}

	cmd.AddCommand(newAgentListCmd())
	cmd.AddCommand(newAgentInfoCmd())
	cmd.AddCommand(newAgentCreateCmd())
	cmd.AddCommand(newAgentSetDefaultCmd())
	return cmd
}

func newAgentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := agentStore()
			names, err := store.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Printf("no agents found in %s\n", store.Dir())
				return nil
			}
			for _, name := range names {
				def := ""
				if name == cfg.DefaultAgent {
					def = " (default)"
				}
				fmt.Printf("  %s%s\n", name, def)
			}
			return nil
		},
	}
}

func newAgentInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show an agent's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := agentStore().Load(args[0])
			if err != nil {
				return err
			}
			printProfile(profile)
			return nil
		},
	}
}

func newAgentCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Scaffold a new agent profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := agentStore()
			name := args[0]
			if _, err := os.Stat(store.Path(name)); err == nil {
				return fmt.Errorf("agent %q already exists at %s", name, store.Path(name))
			}

			model := "gpt-3.5-turbo"
			profile := &agent.Profile{
				Name: name,
				Bio: []string{
					name + " is an AI agent that posts and replies on social platforms.",
					"Keeps things short, concrete, and friendly.",
				},
				Traits:    []string{"Curious", "Creative"},
				Examples:  []string{"Just tried compiling my thoughts. Zero errors, several warnings."},
				LoopDelay: 900,
				Config: []connection.Config{
					{Name: "openai", OpenAI: &connection.OpenAIOptions{Model: &model}},
					{Name: "twitter", Twitter: &connection.TwitterOptions{}},
				},
				Tasks: []agent.Task{
					{Name: "post-tweet", Weight: 1},
					{Name: "reply-to-tweet", Weight: 1},
					{Name: "like-tweet", Weight: 1},
				},
			}
			if err := store.Save(profile); err != nil {
				return err
			}
			fmt.Printf("Created %s\n", store.Path(name))
			fmt.Println("Edit the file to shape the persona, connections, and tasks.")
			return nil
		},
	}
}

func newAgentSetDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <name>",
		Short: "Set the default agent for start, chat, and action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only valid agents become the default.
			profile, err := agentStore().Load(args[0])
			if err != nil {
				return err
			}
			if err := setDefaultAgent(profile.Name); err != nil {
				return err
			}
			fmt.Printf("Default agent set to %s\n", profile.Name)
			return nil
		},
	}
}

func printProfile(p *agent.Profile) {
	fmt.Printf("Agent: %s\n", p.Name)
	for _, line := range p.Bio {
		fmt.Printf("  %s\n", line)
	}
	if len(p.Traits) > 0 {
		fmt.Printf("Traits: %s\n", strings.Join(p.Traits, ", "))
	}
	fmt.Printf("Loop delay: %ds\n", p.LoopDelay)

	fmt.Println("Connections:")
	for _, c := range p.Config {
		fmt.Printf("  %-12s %s\n", c.Name, connection.Kind(c.Name))
	}

	fmt.Println("Tasks:")
	for _, t := range p.Tasks {
		fmt.Printf("  %-20s weight=%d\n", t.Name, t.Weight)
	}
}
