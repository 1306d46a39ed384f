// Package agent defines agent profiles, their on-disk store, and the
// autonomous task loop that drives a loaded agent.
package agent

import (
	"fmt"
	"strings"

	"github.com/blorm-network/zerepy/internal/connection"
)

// Task is a weighted loop action. Higher weights are selected more often.
type Task struct {
	Name        string `json:"name"`
	Weight      int    `json:"weight"`
	Description string `json:"description,omitempty"`
}

// Profile is a named agent persona. A Profile is built once by the loader
// and treated as read-only for the duration of a run.
type Profile struct {
	Name      string              `json:"name"`
	Bio       []string            `json:"bio"`
	Traits    []string            `json:"traits"`
	Examples  []string            `json:"examples"`
	LoopDelay int                 `json:"loop_delay"` // seconds between ticks
	Config    []connection.Config `json:"config"`
	Tasks     []Task              `json:"tasks"`
}

// Connection returns the profile's connection entry with the given name,
// or nil when the profile has no such entry.
func (p *Profile) Connection(name string) *connection.Config {
	for i := range p.Config {
		if p.Config[i].Name == name {
			return &p.Config[i]
		}
	}
	return nil
}

// Validate checks the profile invariants and returns the first violation
// as a *ValidationError.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if p.LoopDelay <= 0 {
		return &ValidationError{Field: "loop_delay", Reason: "must be positive"}
	}

	seenConns := make(map[string]bool, len(p.Config))
	for i, cfg := range p.Config {
		if seenConns[cfg.Name] {
			return &ValidationError{
				Field:  fmt.Sprintf("config[%d].name", i),
				Reason: fmt.Sprintf("duplicate connection %q", cfg.Name),
			}
		}
		seenConns[cfg.Name] = true
		for _, issue := range cfg.Validate() {
			return &ValidationError{
				Field:  fmt.Sprintf("config[%d].%s", i, issue.Key),
				Reason: issue.Message,
			}
		}
	}

	if len(p.Tasks) == 0 {
		return &ValidationError{Field: "tasks", Reason: "at least one task is required"}
	}
	seenTasks := make(map[string]bool, len(p.Tasks))
	for i, task := range p.Tasks {
		if task.Name == "" {
			return &ValidationError{
				Field:  fmt.Sprintf("tasks[%d].name", i),
				Reason: "is required",
			}
		}
		if seenTasks[task.Name] {
			return &ValidationError{
				Field:  fmt.Sprintf("tasks[%d].name", i),
				Reason: fmt.Sprintf("duplicate task %q", task.Name),
			}
		}
		seenTasks[task.Name] = true
		if task.Weight < 1 {
			return &ValidationError{
				Field:  fmt.Sprintf("tasks[%d].weight", i),
				Reason: "must be at least 1",
			}
		}
	}

	return nil
}

// SystemPrompt builds the persona prompt from the profile's bio, traits,
// and style examples.
func (p *Profile) SystemPrompt() string {
	parts := make([]string, 0, len(p.Bio)+len(p.Traits)+len(p.Examples)+2)
	parts = append(parts, p.Bio...)

	if len(p.Traits) > 0 {
		parts = append(parts, "\nYour key traits are:")
		for _, trait := range p.Traits {
			parts = append(parts, "- "+trait)
		}
	}

	if len(p.Examples) > 0 {
		parts = append(parts, "\nHere are some examples of your style (please avoid repeating any of these):")
		for _, example := range p.Examples {
			parts = append(parts, "- "+example)
		}
	}

	return strings.Join(parts, "\n")
}
