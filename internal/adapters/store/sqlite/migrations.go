package sqlite

import (
	"database/sql"
	"fmt"
)

// applyMigrations applies all database migrations in order.
func applyMigrations(db *sql.DB) error {
	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("could not enable foreign keys: %w", err)
	}

	// Create migrations table
	if err := createMigrationsTable(db); err != nil {
		return err
	}

	// Apply each migration
	migrations := []struct {
		version int
		name    string
		sql     string
	}{
		{1, "create_hierarchy_tables", createHierarchyTables},
		{2, "create_activity_tables", createActivityTables},
		{3, "create_goal_tables", createGoalTables},
		{4, "create_sync_tasks_table", createSyncTasksTable},
		{5, "create_sync_log_table", createSyncLogTable},
		{6, "create_hierarchy_indices", createHierarchyIndices},
		{7, "create_queue_indices", createQueueIndices},
		// Pull mirrors
		{8, "create_remote_users_table", createRemoteUsersTable},
		{9, "create_list_mirror_tables", createListMirrorTables},
		{10, "create_task_mirror_tables", createTaskMirrorTables},
		{11, "create_goal_mirror_tables", createGoalMirrorTables},
		{12, "create_mirror_indices", createMirrorIndices},
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(db, m.version)
		if err != nil {
			return fmt.Errorf("could not check migration %d: %w", m.version, err)
		}

		if applied {
			continue
		}

		// Apply migration
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("could not apply migration %d (%s): %w", m.version, m.name, err)
		}

		// Record migration
		if err := recordMigration(db, m.version, m.name); err != nil {
			return fmt.Errorf("could not record migration %d: %w", m.version, err)
		}
	}

	return nil
}

// createMigrationsTable creates the migrations tracking table.
func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// isMigrationApplied checks if a migration has been applied.
func isMigrationApplied(db *sql.DB, version int) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// recordMigration records that a migration has been applied.
func recordMigration(db *sql.DB, version int, name string) error {
	_, err := db.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

// Migration SQL statements

// Tracked hierarchy: every row carries the remote linkage columns
// (remote_id set exactly once on first successful create).
const createHierarchyTables = `
CREATE TABLE modules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	remote_id TEXT,
	remote_url TEXT,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE sub_programs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	module_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	remote_id TEXT,
	remote_url TEXT,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (module_id) REFERENCES modules(id) ON DELETE CASCADE
);

CREATE TABLE components (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sub_program_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	remote_id TEXT,
	remote_url TEXT,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (sub_program_id) REFERENCES sub_programs(id) ON DELETE CASCADE
);
`

const createActivityTables = `
CREATE TABLE activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	component_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	approval_state TEXT NOT NULL DEFAULT 'draft',
	progress_state TEXT NOT NULL DEFAULT 'planned',
	priority TEXT NOT NULL DEFAULT 'normal',
	start_date TIMESTAMP,
	due_date TIMESTAMP,
	remote_id TEXT,
	remote_url TEXT,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (component_id) REFERENCES components(id) ON DELETE CASCADE
);

CREATE TABLE sub_activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	progress_state TEXT NOT NULL DEFAULT 'planned',
	priority TEXT NOT NULL DEFAULT 'normal',
	due_date TIMESTAMP,
	remote_id TEXT,
	remote_url TEXT,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
);

CREATE TABLE checklist_batches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	remote_id TEXT,
	remote_url TEXT,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
);

CREATE TABLE checklist_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	done BOOLEAN NOT NULL DEFAULT 0,
	position INTEGER NOT NULL DEFAULT 0,
	remote_id TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (batch_id) REFERENCES checklist_batches(id) ON DELETE CASCADE
);

CREATE TABLE comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_id INTEGER NOT NULL,
	body TEXT NOT NULL,
	author TEXT,
	remote_id TEXT,
	remote_url TEXT,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
);

CREATE TABLE time_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_id INTEGER NOT NULL,
	description TEXT,
	start_time TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	billable BOOLEAN NOT NULL DEFAULT 0,
	remote_id TEXT,
	remote_url TEXT,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
);
`

const createGoalTables = `
CREATE TABLE goals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	color TEXT,
	due_date TIMESTAMP,
	remote_id TEXT,
	remote_url TEXT,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE indicators (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	goal_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	unit TEXT,
	steps_start INTEGER NOT NULL DEFAULT 0,
	steps_end INTEGER NOT NULL DEFAULT 0,
	remote_id TEXT,
	remote_url TEXT,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (goal_id) REFERENCES goals(id) ON DELETE CASCADE
);
`

// The outbox queue. Rows are retained forever; status is current state
// only, the sync_log table is the history.
const createSyncTasksTable = `
CREATE TABLE sync_tasks (
	id TEXT PRIMARY KEY,
	operation TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id INTEGER NOT NULL,
	priority INTEGER NOT NULL DEFAULT 5,
	status TEXT NOT NULL DEFAULT 'pending',
	retry_count INTEGER NOT NULL DEFAULT 0,
	max_retries INTEGER NOT NULL DEFAULT 3,
	scheduled_at TIMESTAMP NOT NULL,
	started_at TIMESTAMP,
	completed_at TIMESTAMP,
	remote_response TEXT,
	remote_id TEXT,
	last_error TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Append-only audit log: one row per push attempt and per pull run.
const createSyncLogTable = `
CREATE TABLE sync_log (
	id TEXT PRIMARY KEY,
	operation TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id INTEGER NOT NULL,
	direction TEXT NOT NULL,
	status TEXT NOT NULL,
	message TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const createHierarchyIndices = `
CREATE INDEX IF NOT EXISTS idx_sub_programs_module ON sub_programs(module_id);
CREATE INDEX IF NOT EXISTS idx_components_sub_program ON components(sub_program_id);
CREATE INDEX IF NOT EXISTS idx_activities_component ON activities(component_id);
CREATE INDEX IF NOT EXISTS idx_activities_sync_status ON activities(sync_status);
CREATE INDEX IF NOT EXISTS idx_sub_activities_activity ON sub_activities(activity_id);
CREATE INDEX IF NOT EXISTS idx_checklist_batches_activity ON checklist_batches(activity_id);
CREATE INDEX IF NOT EXISTS idx_checklist_items_batch ON checklist_items(batch_id);
CREATE INDEX IF NOT EXISTS idx_comments_activity ON comments(activity_id);
CREATE INDEX IF NOT EXISTS idx_time_entries_activity ON time_entries(activity_id);
CREATE INDEX IF NOT EXISTS idx_indicators_goal ON indicators(goal_id);
`

const createQueueIndices = `
CREATE INDEX IF NOT EXISTS idx_sync_tasks_status ON sync_tasks(status);
CREATE INDEX IF NOT EXISTS idx_sync_tasks_dequeue ON sync_tasks(status, priority, scheduled_at);
CREATE INDEX IF NOT EXISTS idx_sync_tasks_entity ON sync_tasks(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_sync_log_entity ON sync_log(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_sync_log_created ON sync_log(created_at);
`

// Remote users get a local surrogate key so attachment rows can FK to
// them regardless of remote id format.
const createRemoteUsersTable = `
CREATE TABLE remote_users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	remote_id TEXT NOT NULL UNIQUE,
	username TEXT,
	email TEXT,
	color TEXT,
	initials TEXT,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Mirrors scoped to a component (remote list).
const createListMirrorTables = `
CREATE TABLE remote_custom_fields (
	remote_id TEXT PRIMARY KEY,
	component_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	field_type TEXT,
	type_config TEXT,
	required BOOLEAN NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (component_id) REFERENCES components(id) ON DELETE CASCADE
);

CREATE TABLE remote_statuses (
	remote_id TEXT PRIMARY KEY,
	component_id INTEGER NOT NULL,
	status TEXT NOT NULL,
	status_type TEXT,
	color TEXT,
	order_index INTEGER NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (component_id) REFERENCES components(id) ON DELETE CASCADE
);

CREATE TABLE remote_views (
	remote_id TEXT PRIMARY KEY,
	component_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	view_type TEXT,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (component_id) REFERENCES components(id) ON DELETE CASCADE
);
`

// Mirrors scoped to an activity (remote task).
const createTaskMirrorTables = `
CREATE TABLE remote_attachments (
	remote_id TEXT PRIMARY KEY,
	activity_id INTEGER NOT NULL,
	user_id INTEGER,
	title TEXT,
	url TEXT,
	extension TEXT,
	size INTEGER NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES remote_users(id) ON DELETE SET NULL
);

CREATE TABLE remote_checklists (
	remote_id TEXT PRIMARY KEY,
	activity_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0,
	resolved INTEGER NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
);

CREATE TABLE remote_checklist_items (
	remote_id TEXT PRIMARY KEY,
	checklist_remote_id TEXT NOT NULL,
	name TEXT NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0,
	resolved BOOLEAN NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (checklist_remote_id) REFERENCES remote_checklists(remote_id) ON DELETE CASCADE
);

CREATE TABLE remote_tags (
	name TEXT NOT NULL,
	module_id INTEGER NOT NULL,
	fg_color TEXT,
	bg_color TEXT,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (module_id, name),
	FOREIGN KEY (module_id) REFERENCES modules(id) ON DELETE CASCADE
);

CREATE TABLE remote_task_tags (
	activity_id INTEGER NOT NULL,
	tag_name TEXT NOT NULL,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (activity_id, tag_name),
	FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
);

CREATE TABLE remote_field_values (
	field_remote_id TEXT NOT NULL,
	activity_id INTEGER NOT NULL,
	value TEXT,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (field_remote_id, activity_id),
	FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
);
`

// Workspace-scoped goal mirrors.
const createGoalMirrorTables = `
CREATE TABLE remote_goals (
	remote_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	color TEXT,
	percent_completed REAL NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE remote_key_results (
	remote_id TEXT PRIMARY KEY,
	goal_remote_id TEXT NOT NULL,
	name TEXT NOT NULL,
	unit TEXT,
	steps_start INTEGER NOT NULL DEFAULT 0,
	steps_end INTEGER NOT NULL DEFAULT 0,
	completed INTEGER NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (goal_remote_id) REFERENCES remote_goals(remote_id) ON DELETE CASCADE
);
`

const createMirrorIndices = `
CREATE INDEX IF NOT EXISTS idx_remote_custom_fields_component ON remote_custom_fields(component_id);
CREATE INDEX IF NOT EXISTS idx_remote_statuses_component ON remote_statuses(component_id);
CREATE INDEX IF NOT EXISTS idx_remote_views_component ON remote_views(component_id);
CREATE INDEX IF NOT EXISTS idx_remote_attachments_activity ON remote_attachments(activity_id);
CREATE INDEX IF NOT EXISTS idx_remote_checklists_activity ON remote_checklists(activity_id);
CREATE INDEX IF NOT EXISTS idx_remote_checklist_items_checklist ON remote_checklist_items(checklist_remote_id);
CREATE INDEX IF NOT EXISTS idx_remote_key_results_goal ON remote_key_results(goal_remote_id);
`
