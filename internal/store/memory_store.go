package store

import (
	"database/sql"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// MemoryChunk is a piece of knowledge stored in an agent's memory.
type MemoryChunk struct {
	ID        string    `json:"id"`
	Agent     string    `json:"agent"`
	Category  string    `json:"category"`
	Content   string    `json:"content"`
	Metadata  string    `json:"metadata,omitempty"` // JSON blob
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Rank      float64   `json:"rank,omitempty"` // FTS5 rank score (search results only)
}

// MemoryStore manages knowledge chunks with full-text search via SQLite FTS5.
// All operations are scoped to the owning agent.
type MemoryStore struct {
	db *DB
}

// NewMemoryStore creates a memory store using the given database.
func NewMemoryStore(db *DB) *MemoryStore {
	return &MemoryStore{db: db}
}

// Store inserts or updates a memory chunk. A missing ID gets a fresh UUID
// and a missing category defaults to "general".
func (m *MemoryStore) Store(chunk MemoryChunk) (*MemoryChunk, error) {
	if chunk.ID == "" {
		chunk.ID = uuid.New().String()
	}
	if chunk.Category == "" {
		chunk.Category = "general"
	}

	now := time.Now()
	chunk.CreatedAt = now
	chunk.UpdatedAt = now

	var metadata sql.NullString
	if chunk.Metadata != "" {
		metadata = sql.NullString{String: chunk.Metadata, Valid: true}
	}

	_, err := m.db.sql.Exec(
		`INSERT INTO memory_chunks (id, agent, category, content, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   content = excluded.content,
		   category = excluded.category,
		   metadata = excluded.metadata,
		   updated_at = excluded.updated_at`,
		chunk.ID, chunk.Agent, chunk.Category, chunk.Content, metadata,
		now.Format(time.DateTime), now.Format(time.DateTime),
	)
	if err != nil {
		return nil, err
	}

	return &chunk, nil
}

// Search finds an agent's memory chunks matching the query, ranked by
// relevance. The query is free text; any matching term qualifies a chunk.
// Limit of 0 defaults to 20.
func (m *MemoryStore) Search(agent, query string, limit int) ([]MemoryChunk, error) {
	return m.search(agent, "", query, limit)
}

// SearchByCategory searches within a specific category.
func (m *MemoryStore) SearchByCategory(agent, category, query string, limit int) ([]MemoryChunk, error) {
	return m.search(agent, category, query, limit)
}

func (m *MemoryStore) search(agent, category, query string, limit int) ([]MemoryChunk, error) {
	if limit <= 0 {
		limit = 20
	}
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	q := `SELECT mc.id, mc.agent, mc.category, mc.content, mc.metadata,
	             mc.created_at, mc.updated_at, rank
	      FROM memory_fts
	      JOIN memory_chunks mc ON mc.rowid = memory_fts.rowid
	      WHERE memory_fts MATCH ?
	        AND mc.agent = ?`
	args := []any{match, agent}
	if category != "" {
		q += ` AND mc.category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY rank LIMIT ?`
	args = append(args, limit)

	rows, err := m.db.sql.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunks(rows)
}

// List returns an agent's chunks newest first, optionally filtered by
// category. Limit of 0 defaults to 100.
func (m *MemoryStore) List(agent, category string, limit int) ([]MemoryChunk, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows *sql.Rows
	var err error

	if category != "" {
		rows, err = m.db.sql.Query(
			`SELECT id, agent, category, content, metadata, created_at, updated_at, 0
			 FROM memory_chunks WHERE agent = ? AND category = ?
			 ORDER BY updated_at DESC, rowid DESC LIMIT ?`,
			agent, category, limit,
		)
	} else {
		rows, err = m.db.sql.Query(
			`SELECT id, agent, category, content, metadata, created_at, updated_at, 0
			 FROM memory_chunks WHERE agent = ?
			 ORDER BY updated_at DESC, rowid DESC LIMIT ?`,
			agent, limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunks(rows)
}

// Categories returns the distinct categories an agent has chunks in.
func (m *MemoryStore) Categories(agent string) ([]string, error) {
	rows, err := m.db.sql.Query(
		`SELECT DISTINCT category FROM memory_chunks WHERE agent = ? ORDER BY category`,
		agent,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Delete removes a memory chunk by ID.
func (m *MemoryStore) Delete(id string) error {
	_, err := m.db.sql.Exec(`DELETE FROM memory_chunks WHERE id = ?`, id)
	return err
}

// Wipe removes an agent's chunks. An empty category wipes everything the
// agent has stored.
func (m *MemoryStore) Wipe(agent, category string) error {
	if category == "" {
		_, err := m.db.sql.Exec(`DELETE FROM memory_chunks WHERE agent = ?`, agent)
		return err
	}
	_, err := m.db.sql.Exec(
		`DELETE FROM memory_chunks WHERE agent = ? AND category = ?`,
		agent, category,
	)
	return err
}

// ftsQuery rewrites free text into an FTS5 query matching any of its terms.
// Returns "" when the text contains no indexable terms.
func ftsQuery(text string) string {
	terms := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}

func scanChunks(rows *sql.Rows) ([]MemoryChunk, error) {
	var chunks []MemoryChunk
	for rows.Next() {
		var chunk MemoryChunk
		var createdAt, updatedAt string
		var metadata sql.NullString

		if err := rows.Scan(
			&chunk.ID, &chunk.Agent, &chunk.Category,
			&chunk.Content, &metadata, &createdAt, &updatedAt, &chunk.Rank,
		); err != nil {
			return nil, err
		}

		chunk.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		chunk.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
		if metadata.Valid {
			chunk.Metadata = metadata.String
		}

		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}
