package agent

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blorm-network/zerepy/internal/logging"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), logging.New(nil, "silent"))
}

func writeAgentDoc(t *testing.T, s *Store, name, doc string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(s.Dir(), 0o700))
	require.NoError(t, os.WriteFile(s.Path(name), []byte(doc), 0o600))
}

func TestStoreLoad(t *testing.T) {
	s := testStore(t)
	writeAgentDoc(t, s, "mino", exampleDoc)

	p, err := s.Load("mino")
	require.NoError(t, err)
	assert.Equal(t, "Mino", p.Name)
	assert.Equal(t, 60, p.LoopDelay)
	assert.Len(t, p.Config, 2)
}

func TestStoreLoadNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.Load("ghost")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.Name)

	var pe *ParseError
	assert.False(t, errors.As(err, &pe), "a missing agent must not read as a parse failure")
}

func TestStoreLoadParseError(t *testing.T) {
	s := testStore(t)
	writeAgentDoc(t, s, "broken", `{"name": "broken",`)

	_, err := s.Load("broken")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "broken", pe.Name)
	assert.Error(t, pe.Err)
}

func TestStoreLoadValidationError(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			"missing name",
			`{"loop_delay": 60, "tasks": [{"name": "post-tweet", "weight": 1}]}`,
			"name",
		},
		{
			"missing tasks",
			`{"name": "mino", "loop_delay": 60}`,
			"tasks",
		},
		{
			"zero loop delay",
			`{"name": "mino", "loop_delay": 0, "tasks": [{"name": "post-tweet", "weight": 1}]}`,
			"loop_delay",
		},
		{
			"bad connection option",
			`{"name": "mino", "loop_delay": 60,
			  "config": [{"name": "youtube", "comment_fetch_count": 0}],
			  "tasks": [{"name": "post-tweet", "weight": 1}]}`,
			"config[0].comment_fetch_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore(t)
			writeAgentDoc(t, s, "mino", tt.doc)

			_, err := s.Load("mino")

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestStoreLoadEmptyName(t *testing.T) {
	s := testStore(t)

	_, err := s.Load("")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestStoreLoadRejectsPathSeparators(t *testing.T) {
	s := testStore(t)

	_, err := s.Load("../evil")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestStoreSaveRejectsPathSeparators(t *testing.T) {
	s := testStore(t)
	p := validProfile()
	p.Name = "../evil"

	var verr *ValidationError
	require.ErrorAs(t, s.Save(p), &verr)
}

func TestStoreList(t *testing.T) {
	s := testStore(t)
	writeAgentDoc(t, s, "zeta", exampleDoc)
	writeAgentDoc(t, s, "alpha", exampleDoc)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ".hidden.json"), []byte("{}"), 0o600))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	// Stable within a process.
	again, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, names, again)
}

func TestStoreListMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"), logging.New(nil, "silent"))

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)
	p := parseProfile(t, exampleDoc)

	require.NoError(t, s.Save(p))

	info, err := os.Stat(s.Path(p.Name))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := s.Load("Mino")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestStoreSaveInvalid(t *testing.T) {
	s := testStore(t)
	p := validProfile()
	p.Tasks = nil

	err := s.Save(p)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tasks", verr.Field)

	_, statErr := os.Stat(s.Path(p.Name))
	assert.True(t, os.IsNotExist(statErr), "invalid profiles must not be written")
}
