package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migrate brings the file up to currentVersion in one transaction, so an
// interrupted upgrade leaves the file as it was and is retried on next open.
func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	if version < 1 {
		if err := migrateV1(tx); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := migrateV2(tx); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return tx.Commit()
}

// migrateV1 creates the original schema. Files written by the first release
// already have these tables, so every statement is IF NOT EXISTS.
func migrateV1(tx *sqlx.Tx) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		email       TEXT NOT NULL UNIQUE,
		password    TEXT NOT NULL,
		name        TEXT NOT NULL,
		college     TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	);

	CREATE TABLE IF NOT EXISTS courses (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT,
		instructor  TEXT,
		total_hours INTEGER,
		credits     INTEGER,
		tag         TEXT CHECK(tag IN ('Self', 'College')),
		progress    INTEGER DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	);

	CREATE TABLE IF NOT EXISTS assignments (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id   INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	);

	CREATE TABLE IF NOT EXISTS notes (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id   INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		heading     TEXT NOT NULL,
		content     TEXT,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	);

	CREATE TABLE IF NOT EXISTS projects (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id   INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		tech_stack  TEXT,
		details     TEXT,
		pdf_url     TEXT,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		details     TEXT,
		deadline    TEXT,
		priority    TEXT CHECK(priority IN ('Low', 'Medium', 'High')),
		status      TEXT CHECK(status IN ('Not started', 'Doing', 'Completed')),
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	);

	CREATE TABLE IF NOT EXISTS focus_blocks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		details     TEXT,
		day         TEXT,
		date        TEXT,
		time        TEXT,
		duration    INTEGER,
		color       TEXT,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_courses_user      ON courses(user_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_user        ON tasks(user_id);
	CREATE INDEX IF NOT EXISTS idx_focus_blocks_user ON focus_blocks(user_id);

	CREATE TABLE IF NOT EXISTS study_sessions (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id          INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		course           TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		focus            TEXT,
		logged_at        TEXT,
		color            TEXT,
		session_date     TEXT,
		created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('default_block_minutes', '25'),
		('default_block_color',   '#38BDF8'),
		('weekly_goal_hours',     '10');
	`
	if _, err := tx.Exec(ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// migrateV2 adds the timer columns to focus_blocks and the numeric session
// duration. Each column is added only when missing so files from any earlier
// build upgrade in place.
func migrateV2(tx *sqlx.Tx) error {
	timerColumns := []struct{ name, ddl string }{
		{"is_active", "INTEGER NOT NULL DEFAULT 0"},
		{"is_paused", "INTEGER NOT NULL DEFAULT 0"},
		{"elapsed_time", "INTEGER NOT NULL DEFAULT 0"},
		{"flagged_times", "TEXT"},
	}
	for _, c := range timerColumns {
		if err := addColumnIfMissing(tx, "focus_blocks", c.name, c.ddl); err != nil {
			return err
		}
	}

	added, err := hasColumn(tx, "study_sessions", "duration_minutes")
	if err != nil {
		return err
	}
	if !added {
		if err := addColumnIfMissing(tx, "study_sessions", "duration_minutes", "INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
		if err := backfillSessionMinutes(tx); err != nil {
			return err
		}
	}
	return normalizeTimestamps(tx)
}

func hasColumn(q sqlx.Queryer, table, column string) (bool, error) {
	rows, err := q.Queryx(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		cols, err := rows.SliceScan()
		if err != nil {
			return false, err
		}
		// cid, name, type, notnull, dflt_value, pk
		if name, ok := cols[1].(string); ok && name == column {
			return true, nil
		}
		if name, ok := cols[1].([]byte); ok && string(name) == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func addColumnIfMissing(tx *sqlx.Tx, table, column, ddl string) error {
	ok, err := hasColumn(tx, table, column)
	if err != nil || ok {
		return err
	}
	_, err = tx.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, ddl))
	if err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

// backfillSessionMinutes converts the free-text duration labels written by the
// first release ("1h 30m", "45m") into duration_minutes.
func backfillSessionMinutes(tx *sqlx.Tx) error {
	legacy, err := hasColumn(tx, "study_sessions", "duration")
	if err != nil || !legacy {
		return err
	}

	var rows []struct {
		ID       int64  `db:"id"`
		Duration string `db:"duration"`
	}
	if err := tx.Select(&rows, `SELECT id, COALESCE(duration, '') AS duration FROM study_sessions`); err != nil {
		return fmt.Errorf("read legacy durations: %w", err)
	}
	for _, r := range rows {
		mins, ok := ParseDurationLabel(r.Duration)
		if !ok {
			continue
		}
		if _, err := tx.Exec(`UPDATE study_sessions SET duration_minutes = ? WHERE id = ?`, mins, r.ID); err != nil {
			return fmt.Errorf("backfill session %d: %w", r.ID, err)
		}
	}
	return nil
}

// normalizeTimestamps rewrites CURRENT_TIMESTAMP values ("2006-01-02 15:04:05",
// UTC) from older builds into the ISO layout new rows use, so text ordering on
// these columns matches time ordering.
func normalizeTimestamps(tx *sqlx.Tx) error {
	tables := []string{"users", "courses", "assignments", "notes", "projects", "tasks", "focus_blocks", "study_sessions"}
	for _, table := range tables {
		for _, column := range []string{"created_at", "session_date"} {
			ok, err := hasColumn(tx, table, column)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			q := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', %[2]s)
				WHERE %[2]s NOT LIKE '%%T%%' AND strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', %[2]s) IS NOT NULL`, table, column)
			if _, err := tx.Exec(q); err != nil {
				return fmt.Errorf("normalize %s.%s: %w", table, column, err)
			}
		}
	}
	return nil
}
