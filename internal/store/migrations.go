package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
	id              TEXT PRIMARY KEY,
	workspace_id    TEXT NOT NULL,
	type            TEXT NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	url             TEXT NOT NULL DEFAULT '',
	content         TEXT NOT NULL DEFAULT '',
	domain          TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	image_url       TEXT NOT NULL DEFAULT '',
	tags            TEXT NOT NULL DEFAULT '[]',
	pinned          INTEGER NOT NULL DEFAULT 0,
	scheduled_dates TEXT NOT NULL DEFAULT '[]',
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL,
	deleted         INTEGER NOT NULL DEFAULT 0,
	deleted_at      DATETIME,
	synced          INTEGER NOT NULL DEFAULT 0,
	last_modified   DATETIME NOT NULL,
	server_version  DATETIME,
	local_only      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS collections (
	id             TEXT PRIMARY KEY,
	workspace_id   TEXT NOT NULL,
	name           TEXT NOT NULL,
	slug           TEXT NOT NULL,
	parent_id      TEXT,
	pinned         INTEGER NOT NULL DEFAULT 0,
	is_private     INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL,
	deleted        INTEGER NOT NULL DEFAULT 0,
	deleted_at     DATETIME,
	synced         INTEGER NOT NULL DEFAULT 0,
	last_modified  DATETIME NOT NULL,
	server_version DATETIME,
	local_only     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
	id                   TEXT PRIMARY KEY,
	workspace_id         TEXT NOT NULL,
	title                TEXT NOT NULL,
	date                 TEXT NOT NULL,
	end_date             TEXT NOT NULL DEFAULT '',
	start_time           TEXT NOT NULL DEFAULT '',
	end_time             TEXT NOT NULL DEFAULT '',
	recurrence           TEXT,
	excluded_dates       TEXT NOT NULL DEFAULT '[]',
	recurrence_parent_id TEXT,
	is_exception         INTEGER NOT NULL DEFAULT 0,
	created_at           DATETIME NOT NULL,
	updated_at           DATETIME NOT NULL,
	deleted              INTEGER NOT NULL DEFAULT 0,
	deleted_at           DATETIME,
	synced               INTEGER NOT NULL DEFAULT 0,
	last_modified        DATETIME NOT NULL,
	server_version       DATETIME,
	local_only           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS todos (
	id             TEXT PRIMARY KEY,
	workspace_id   TEXT NOT NULL,
	title          TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open', 'complete')),
	due_date       TEXT NOT NULL DEFAULT '',
	sort_order     INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL,
	deleted        INTEGER NOT NULL DEFAULT 0,
	deleted_at     DATETIME,
	synced         INTEGER NOT NULL DEFAULT 0,
	last_modified  DATETIME NOT NULL,
	server_version DATETIME,
	local_only     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sync_queue (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_type  TEXT NOT NULL,
	entity_id    TEXT NOT NULL,
	op           TEXT NOT NULL CHECK(op IN ('create', 'update', 'delete')),
	payload      TEXT NOT NULL DEFAULT '',
	base_version DATETIME,
	retry_count  INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	entity_id  TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cards_workspace ON cards(workspace_id, deleted);
CREATE INDEX IF NOT EXISTS idx_cards_updated ON cards(updated_at);
CREATE INDEX IF NOT EXISTS idx_collections_workspace ON collections(workspace_id, deleted);
CREATE INDEX IF NOT EXISTS idx_collections_parent ON collections(parent_id);
CREATE INDEX IF NOT EXISTS idx_events_workspace ON events(workspace_id, deleted);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
CREATE INDEX IF NOT EXISTS idx_todos_workspace ON todos(workspace_id, deleted);
CREATE INDEX IF NOT EXISTS idx_queue_entity ON sync_queue(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_events_parent ON events(recurrence_parent_id);
CREATE INDEX IF NOT EXISTS idx_cards_url ON cards(workspace_id, url);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
