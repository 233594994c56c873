package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// tasks.project_id deliberately has no ON DELETE CASCADE: project deletion is
// an explicit two-phase transaction in DeleteProjectCascade so the cascade is
// visible at the call site. Task sub-collections do cascade from their task.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT '',
	department    TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS projects (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'planning'
		CHECK(status IN ('planning', 'active', 'on-hold', 'completed', 'cancelled')),
	priority        TEXT NOT NULL DEFAULT 'medium'
		CHECK(priority IN ('low', 'medium', 'high', 'urgent')),
	owner_id        TEXT NOT NULL REFERENCES users(id),
	tags            TEXT NOT NULL DEFAULT '[]',
	color           TEXT NOT NULL DEFAULT '',
	budget_allocated REAL NOT NULL DEFAULT 0,
	budget_spent    REAL NOT NULL DEFAULT 0,
	budget_currency TEXT NOT NULL DEFAULT 'USD',
	progress        INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
	archived        INTEGER NOT NULL DEFAULT 0 CHECK(archived IN (0, 1)),
	deadline        DATETIME,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS project_members (
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL REFERENCES users(id),
	role       TEXT NOT NULL DEFAULT 'member'
		CHECK(role IN ('owner', 'admin', 'member', 'viewer')),
	joined_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (project_id, user_id)
);

CREATE TABLE IF NOT EXISTS tasks (
	id              TEXT PRIMARY KEY,
	project_id      TEXT NOT NULL REFERENCES projects(id),
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'todo'
		CHECK(status IN ('todo', 'in-progress', 'review', 'completed', 'cancelled')),
	priority        TEXT NOT NULL DEFAULT 'medium'
		CHECK(priority IN ('low', 'medium', 'high', 'urgent')),
	assignee_id     TEXT,
	reporter_id     TEXT NOT NULL,
	labels          TEXT NOT NULL DEFAULT '[]',
	attachments     TEXT NOT NULL DEFAULT '[]',
	due_date        DATETIME,
	estimated_hours REAL NOT NULL DEFAULT 0 CHECK(estimated_hours BETWEEN 0 AND 1000),
	actual_hours    REAL NOT NULL DEFAULT 0 CHECK(actual_hours BETWEEN 0 AND 1000),
	progress        INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
	completed_at    DATETIME,
	archived        INTEGER NOT NULL DEFAULT 0 CHECK(archived IN (0, 1)),
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_comments (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	author_id  TEXT NOT NULL,
	content    TEXT NOT NULL,
	edited     INTEGER NOT NULL DEFAULT 0 CHECK(edited IN (0, 1)),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_subtasks (
	id           TEXT PRIMARY KEY,
	task_id      TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	completed    INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	completed_at DATETIME,
	completed_by TEXT,
	sort_order   INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_dependencies (
	id            TEXT PRIMARY KEY,
	task_id       TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	other_task_id TEXT NOT NULL,
	relation      TEXT NOT NULL DEFAULT 'relates-to'
		CHECK(relation IN ('blocks', 'blocked-by', 'relates-to')),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(task_id, other_task_id, relation)
);

CREATE TABLE IF NOT EXISTS task_time_entries (
	id               TEXT PRIMARY KEY,
	task_id          TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	user_id          TEXT NOT NULL,
	started_at       DATETIME NOT NULL,
	ended_at         DATETIME,
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	description      TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_watchers (
	task_id  TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	user_id  TEXT NOT NULL,
	added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (task_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_projects_owner_id ON projects(owner_id);
CREATE INDEX IF NOT EXISTS idx_project_members_user_id ON project_members(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee_id ON tasks(assignee_id);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);
CREATE INDEX IF NOT EXISTS idx_task_comments_task_id ON task_comments(task_id);
CREATE INDEX IF NOT EXISTS idx_task_subtasks_task_id ON task_subtasks(task_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_completed_at ON tasks(completed_at);
CREATE INDEX IF NOT EXISTS idx_task_time_entries_task_id ON task_time_entries(task_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
