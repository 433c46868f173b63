package history

// SchemaVersion is the current history schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the history tables.
const Schema = `
-- Executed query history
CREATE TABLE IF NOT EXISTS query_history (
    id TEXT PRIMARY KEY,
    database_id TEXT NOT NULL,
    table_name TEXT NOT NULL,
    sql_text TEXT NOT NULL,
    status TEXT NOT NULL,
    row_count INTEGER NOT NULL DEFAULT 0,
    execution_ms INTEGER NOT NULL DEFAULT 0,
    error_message TEXT,
    user_id TEXT,
    created_at TIMESTAMP NOT NULL
);

-- Saved query definitions
CREATE TABLE IF NOT EXISTS saved_queries (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    database_id TEXT NOT NULL,
    table_name TEXT NOT NULL,
    request_json TEXT NOT NULL,
    created_by TEXT,
    created_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_history_created_at ON query_history(created_at);
CREATE INDEX IF NOT EXISTS idx_history_database_id ON query_history(database_id);
CREATE INDEX IF NOT EXISTS idx_history_status ON query_history(status);
CREATE INDEX IF NOT EXISTS idx_history_user_id ON query_history(user_id);
CREATE INDEX IF NOT EXISTS idx_saved_name ON saved_queries(name);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
