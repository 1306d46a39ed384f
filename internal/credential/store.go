// Package credential manages per-connection secrets. Values resolve from the
// environment first, then from a YAML file on disk.
package credential

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store reads and writes connection credentials. The backing file maps
// connection names to key/value pairs and is written with 0600 permissions.
type Store struct {
	path string
}

// NewStore creates a credential store backed by the given YAML file.
// The file does not need to exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// EnvName returns the environment variable consulted for a connection key,
// e.g. ("twitter", "api_key") resolves to TWITTER_API_KEY.
func EnvName(connection, key string) string {
	s := strings.ToUpper(connection + "_" + key)
	return strings.ReplaceAll(s, "-", "_")
}

// Lookup resolves a credential. The environment wins over the file so that
// deployments can inject secrets without touching disk.
func (s *Store) Lookup(connection, key string) (string, bool) {
	if v, ok := os.LookupEnv(EnvName(connection, key)); ok && v != "" {
		return v, true
	}
	creds, err := s.read()
	if err != nil {
		return "", false
	}
	v, ok := creds[connection][key]
	return v, ok && v != ""
}

// Set stores a credential in the backing file.
func (s *Store) Set(connection, key, value string) error {
	creds, err := s.read()
	if err != nil {
		return err
	}
	if creds[connection] == nil {
		creds[connection] = make(map[string]string)
	}
	creds[connection][key] = value
	return s.write(creds)
}

// Unset removes a credential from the backing file. Removing the last key of
// a connection removes the connection entry as well.
func (s *Store) Unset(connection, key string) error {
	creds, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := creds[connection]; !ok {
		return nil
	}
	delete(creds[connection], key)
	if len(creds[connection]) == 0 {
		delete(creds, connection)
	}
	return s.write(creds)
}

// Keys returns the credential keys stored on disk for a connection, sorted.
// Environment-only values are not listed.
func (s *Store) Keys(connection string) ([]string, error) {
	creds, err := s.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(creds[connection]))
	for k := range creds[connection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Configured reports whether every listed key resolves for the connection.
func (s *Store) Configured(connection string, keys []string) bool {
	for _, key := range keys {
		if _, ok := s.Lookup(connection, key); !ok {
			return false
		}
	}
	return true
}

func (s *Store) read() (map[string]map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds := make(map[string]map[string]string)
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return creds, nil
}

func (s *Store) write(creds map[string]map[string]string) error {
	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
