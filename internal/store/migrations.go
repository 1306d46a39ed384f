package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create memory chunks with FTS5",
		SQL: `
			CREATE TABLE memory_chunks (
				id          TEXT PRIMARY KEY,
				agent       TEXT NOT NULL,
				category    TEXT NOT NULL DEFAULT 'general',
				content     TEXT NOT NULL,
				metadata    TEXT,
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_memory_agent ON memory_chunks (agent);
			CREATE INDEX idx_memory_category ON memory_chunks (agent, category);

			CREATE VIRTUAL TABLE memory_fts USING fts5(
				content,
				content='memory_chunks',
				content_rowid='rowid'
			);

			CREATE TRIGGER memory_ai AFTER INSERT ON memory_chunks BEGIN
				INSERT INTO memory_fts(rowid, content)
				VALUES (new.rowid, new.content);
			END;

			CREATE TRIGGER memory_ad AFTER DELETE ON memory_chunks BEGIN
				INSERT INTO memory_fts(memory_fts, rowid, content)
				VALUES ('delete', old.rowid, old.content);
			END;

			CREATE TRIGGER memory_au AFTER UPDATE ON memory_chunks BEGIN
				INSERT INTO memory_fts(memory_fts, rowid, content)
				VALUES ('delete', old.rowid, old.content);
				INSERT INTO memory_fts(rowid, content)
				VALUES (new.rowid, new.content);
			END;
		`,
	},
}
