package config

// Config is the root configuration for the zerepy CLI. It configures the
// tool itself; agent personas live in their own JSON documents under the
// agents directory and are handled by the agent package.
type Config struct {
	DefaultAgent string        `yaml:"defaultAgent,omitempty"` // agent used by start/chat when --agent is not given
	AgentsDir    string        `yaml:"agentsDir,omitempty"`    // overrides ~/.zerepy/agents
	Logging      LoggingConfig `yaml:"logging,omitempty"`
	Memory       MemoryConfig  `yaml:"memory,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleLevel string `yaml:"consoleLevel,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// MemoryConfig configures the agent memory store.
type MemoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"` // defaults to true
	Store   string `yaml:"store,omitempty"`   // "sqlite" | "memory"
	Path    string `yaml:"path,omitempty"`    // overrides ~/.zerepy/data/zerepy.db
}

// MemoryEnabled reports whether the memory store should be opened.
func (c *Config) MemoryEnabled() bool {
	if c.Memory.Enabled == nil {
		return true
	}
	return *c.Memory.Enabled
}
