package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blorm-network/zerepy/internal/logging"
)

// Store loads and saves agent profiles as <name>.json documents in a
// directory.
type Store struct {
	dir string
	log *logging.Logger
}

// NewStore creates a profile store rooted at dir.
func NewStore(dir string, log *logging.Logger) *Store {
	return &Store{dir: dir, log: log.Sub("agents")}
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string { return s.dir }

// Path returns the document path for an agent name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads, parses, and validates an agent profile. It returns
// *NotFoundError when no document exists, *ParseError when the document is
// not well-formed JSON, and *ValidationError when an invariant fails.
func (s *Store) Load(name string) (*Profile, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, &ValidationError{Field: "name", Reason: "must not contain path separators"}
	}

	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, &NotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("reading agent document: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	s.log.Debug().Str("agent", profile.Name).Int("tasks", len(profile.Tasks)).Msg("profile loaded")
	return &profile, nil
}

// List returns the known agent names, sorted. Non-JSON files and dotfiles
// are ignored. A missing directory yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading agents directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Save validates the profile and writes it to <name>.json with 0600
// permissions, creating the directory when needed.
func (s *Store) Save(profile *Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	if strings.ContainsAny(profile.Name, `/\`) {
		return &ValidationError{Field: "name", Reason: "must not contain path separators"}
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating agents directory: %w", err)
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding agent profile: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.Path(profile.Name), data, 0o600); err != nil {
		return fmt.Errorf("writing agent document: %w", err)
	}
	s.log.Info().Str("agent", profile.Name).Msg("profile saved")
	return nil
}
