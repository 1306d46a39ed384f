package cli

import (
	"fmt"
	"path/filepath"

	"github.com/blorm-network/zerepy/internal/agent"
	"github.com/blorm-network/zerepy/internal/config"
	"github.com/blorm-network/zerepy/internal/connection"
	"github.com/blorm-network/zerepy/internal/credential"
	"github.com/blorm-network/zerepy/internal/store"
)

func agentStore() *agent.Store {
	return agent.NewStore(paths.AgentsDir(&cfg), log)
}

func credentialStore() *credential.Store {
	return credential.NewStore(filepath.Join(paths.Credentials, "credentials.yaml"))
}

// resolveAgentName picks the agent from the flag, falling back to the
// configured default.
func resolveAgentName(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg.DefaultAgent != "" {
		return cfg.DefaultAgent, nil
	}
	return "", fmt.Errorf("no agent selected; pass --agent or run load-agent first")
}

func newManager(profile *agent.Profile) *connection.Manager {
	return connection.NewManager(profile.Config, credentialStore(), log)
}

// setDefaultAgent records the agent in the runtime config file without
// disturbing unrelated keys.
func setDefaultAgent(name string) error {
	raw, err := config.LoadRaw(paths.Config)
	if err != nil {
		return err
	}
	raw["defaultAgent"] = name
	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	return config.SaveRaw(paths.Config, raw)
}

// openMemory opens the memory database. The caller owns the close function.
func openMemory() (*store.MemoryStore, func() error, error) {
	if !cfg.MemoryEnabled() {
		return nil, nil, fmt.Errorf("memory is disabled; set memory.enabled to true")
	}
	db, err := store.Open(paths.MemoryDBPath(&cfg), log)
	if err != nil {
		return nil, nil, err
	}
	return store.NewMemoryStore(db), db.Close, nil
}
