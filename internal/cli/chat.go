package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blorm-network/zerepy/internal/llm"
	"github.com/blorm-network/zerepy/internal/store"
)

func newChatCmd() *cobra.Command {
	var agentName string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively with an agent",
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

			client, err := newManager(profile).FirstLLM()
			if err != nil {
				return err
			}

			var memory *store.MemoryStore
			if cfg.MemoryEnabled() {
				mem, closeDB, err := openMemory()
				if err != nil {
					return err
				}
				defer closeDB()
				memory = mem
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Chatting with %s via %s. Type 'exit' to quit.\n", profile.Name, client.Name())

			var history []llm.Message
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				input := strings.TrimSpace(scanner.Text())
				if input == "" {
					continue
				}
				if input == "exit" || input == "quit" {
					return nil
				}

				system := profile.SystemPrompt()
				if memory != nil {
					if recalled := memoryContext(memory, profile.Name, input); recalled != "" {
						system += "\n\nRelevant memories:\n" + recalled
					}
				}

				history = append(history, llm.Message{Role: llm.RoleUser, Content: input})
				reply, err := streamReply(ctx, client, llm.CompletionRequest{
					System:   system,
					Messages: history,
				})
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					fmt.Printf("error: %v\n", err)
					history = history[:len(history)-1]
					continue
				}
				history = append(history, llm.Message{Role: llm.RoleAssistant, Content: reply})
			}
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "agent to chat with (default from config)")
	return cmd
}

// streamReply prints deltas as they arrive and returns the full reply text.
func streamReply(ctx context.Context, client llm.Client, req llm.CompletionRequest) (string, error) {
	events, err := client.Stream(ctx, req)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for evt := range events {
		switch evt.Type {
		case "delta":
			fmt.Print(evt.Content)
			b.WriteString(evt.Content)
		case "error":
			fmt.Println()
			return "", errors.New(evt.Error)
		case "done":
			// Providers without true streaming deliver everything here.
			if b.Len() == 0 && evt.Response != nil {
				fmt.Print(evt.Response.Content)
				b.WriteString(evt.Response.Content)
			}
		}
	}
	fmt.Println()
	return b.String(), nil
}

// memoryContext returns the top memory hits for the input, one per line.
func memoryContext(memory *store.MemoryStore, agentName, query string) string {
	chunks, err := memory.Search(agentName, query, 3)
	if err != nil || len(chunks) == 0 {
		return ""
	}
	lines := make([]string, 0, len(chunks))
	for _, c := range chunks {
		lines = append(lines, "- "+c.Content)
	}
	return strings.Join(lines, "\n")
}
