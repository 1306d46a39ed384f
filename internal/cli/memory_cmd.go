package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blorm-network/zerepy/internal/store"
)

func newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage the agent memory store",
	}

	cmd.AddCommand(newMemoryUploadCmd())
	cmd.AddCommand(newMemorySearchCmd())
	cmd.AddCommand(newMemoryListCmd())
	cmd.AddCommand(newMemoryCategoriesCmd())
	cmd.AddCommand(newMemoryDeleteCmd())
	cmd.AddCommand(newMemoryWipeCmd())
	return cmd
}

func newMemoryUploadCmd() *cobra.Command {
	var (
		agentName string
		category  string
		chunkSize int
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Chunk a text file into an agent's memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveAgentName(agentName)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			memory, closeDB, err := openMemory()
			if err != nil {
				return err
			}
			defer closeDB()

			chunks := store.ChunkText(string(data), chunkSize)
			for _, content := range chunks {
				if _, err := memory.Store(store.MemoryChunk{
					Agent:    name,
					Category: category,
					Content:  content,
				}); err != nil {
					return err
				}
			}

			fmt.Printf("Stored %d chunks in %q for %s\n", len(chunks), category, name)
			return nil
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "owner agent (default from config)")
	cmd.Flags().StringVar(&category, "category", "general", "memory category")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "chunk size in characters (default 500)")
	return cmd
}

func newMemorySearchCmd() *cobra.Command {
	var (
		agentName string
		category  string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search an agent's memories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveAgentName(agentName)
			if err != nil {
				return err
			}

			memory, closeDB, err := openMemory()
			if err != nil {
				return err
			}
			defer closeDB()

			query := strings.Join(args, " ")
			var chunks []store.MemoryChunk
			if category != "" {
				chunks, err = memory.SearchByCategory(name, category, query, limit)
			} else {
				chunks, err = memory.Search(name, query, limit)
			}
			if err != nil {
				return err
			}

			if len(chunks) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, c := range chunks {
				fmt.Printf("[%s] %s\n", c.Category, c.Content)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "owner agent (default from config)")
	cmd.Flags().StringVar(&category, "category", "", "restrict to one category")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results")
	return cmd
}

func newMemoryListCmd() *cobra.Command {
	var (
		agentName string
		category  string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an agent's memories, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveAgentName(agentName)
			if err != nil {
				return err
			}

			memory, closeDB, err := openMemory()
			if err != nil {
				return err
			}
			defer closeDB()

			chunks, err := memory.List(name, category, limit)
			if err != nil {
				return err
			}
			if len(chunks) == 0 {
				fmt.Println("no memories")
				return nil
			}
			for _, c := range chunks {
				fmt.Printf("%s  %s  [%s] %s\n", c.ID, c.UpdatedAt.Format(time.DateTime), c.Category, c.Content)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "owner agent (default from config)")
	cmd.Flags().StringVar(&category, "category", "", "restrict to one category")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results")
	return cmd
}

func newMemoryCategoriesCmd() *cobra.Command {
	var agentName string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the categories an agent has memories in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveAgentName(agentName)
			if err != nil {
				return err
			}

			memory, closeDB, err := openMemory()
			if err != nil {
				return err
			}
			defer closeDB()

			categories, err := memory.Categories(name)
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				fmt.Println("no memories")
				return nil
			}
			for _, c := range categories {
				fmt.Println(c)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "owner agent (default from config)")
	return cmd
}

func newMemoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a single memory chunk by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memory, closeDB, err := openMemory()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := memory.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func newMemoryWipeCmd() *cobra.Command {
	var (
		agentName string
		category  string
	)

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete an agent's memories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveAgentName(agentName)
			if err != nil {
				return err
			}

			memory, closeDB, err := openMemory()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := memory.Wipe(name, category); err != nil {
				return err
			}
			if category != "" {
				fmt.Printf("Wiped %q memories for %s\n", category, name)
			} else {
				fmt.Printf("Wiped all memories for %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "owner agent (default from config)")
	cmd.Flags().StringVar(&category, "category", "", "wipe only one category")
	return cmd
}
