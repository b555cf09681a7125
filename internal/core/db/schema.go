package db

func (db *DB) initSchema() error {
	schema := `
	-- Conversations table
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		platform TEXT NOT NULL,
		title TEXT NOT NULL,
		preview TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		message_count INTEGER DEFAULT 0,
		tags TEXT,
		is_starred BOOLEAN DEFAULT 0,
		is_archived BOOLEAN DEFAULT 0,
		synthetic BOOLEAN DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_conversations_platform ON conversations(platform);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
	CREATE INDEX IF NOT EXISTS idx_conversations_is_starred ON conversations(is_starred);
	CREATE INDEX IF NOT EXISTS idx_conversations_is_archived ON conversations(is_archived);
	`

	_, err := db.conn.Exec(schema)
	return err
}
