package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/imkarma/taskboard/internal/task"
)

// ErrNotFound is returned when a task id does not exist.
var ErrNotFound = errors.New("task not found")

// Store provides access to the taskboard database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at the given path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT '',
		priority     TEXT NOT NULL DEFAULT '',
		deadline     TEXT NOT NULL DEFAULT '',
		created_at   DATETIME NOT NULL,
		updated_at   DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Databases created before categories existed lack the column.
	return s.addColumnIfMissing("tasks", "category", "TEXT NOT NULL DEFAULT ''")
}

// addColumnIfMissing adds a column to a table if it doesn't exist yet.
func (s *Store) addColumnIfMissing(table, column, colDef string) error {
	rows, err := s.db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue *string
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	rows.Close()

	if _, err := s.db.Exec("ALTER TABLE " + table + " ADD COLUMN " + column + " " + colDef); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

// CreateTask inserts a task from a validated draft and returns it with the
// generated ID.
func (s *Store) CreateTask(d task.Draft) (*task.Task, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	deadline, _ := task.ParseDate(d.Deadline)

	t := task.Task{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Status:      task.Status(d.Status),
		Priority:    task.Priority(d.Priority),
		Deadline:    deadline,
		Category:    strings.TrimSpace(d.Category),
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO tasks (title, description, status, priority, deadline, category, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.Deadline.String(), t.Category, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, _ := res.LastInsertId()
	t.ID = task.ID(strconv.FormatInt(id, 10))
	return &t, nil
}

// taskColumns is the standard column list for task queries.
const taskColumns = `id, title, description, status, priority, deadline, category`

// GetTask returns a single task by ID.
func (s *Store) GetTask(id task.ID) (*task.Task, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, n)
	t, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ListTasks returns the tasks matching every set dimension of f, in creation
// order. Search matches title or description, ignoring case.
func (s *Store) ListTasks(f task.Filter) ([]task.Task, error) {
	var where []string
	var args []any

	if v := unlessAll(string(f.Status)); v != "" {
		where = append(where, "status = ?")
		args = append(args, v)
	}
	if v := unlessAll(string(f.Priority)); v != "" {
		where = append(where, "priority = ?")
		args = append(args, v)
	}
	if v := unlessAll(f.Category); v != "" {
		where = append(where, "category = ?")
		args = append(args, v)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	tasks, err := s.queryTasks(query, args...)
	if err != nil {
		return nil, err
	}

	// SQLite's LOWER only folds ASCII, so search is matched here.
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return tasks, nil
	}
	matched := []task.Task{}
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// AllTasks returns every task, ignoring any filter. Used for exports.
func (s *Store) AllTasks() ([]task.Task, error) {
	return s.ListTasks(task.Filter{})
}

// queryTasks is a shared helper for running task-list queries.
func (s *Store) queryTasks(query string, args ...any) ([]task.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// DeleteTask removes a task. Deleting an unknown id returns ErrNotFound.
func (s *Store) DeleteTask(id task.ID) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, n)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Categories returns the distinct non-empty categories in use, sorted.
func (s *Store) Categories() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT category FROM tasks WHERE category != '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Stats aggregates every task relative to today. Overdue tasks have a
// deadline before today; due-soon tasks have one within dueSoonDays of today
// inclusive. Completed tasks are neither.
func (s *Store) Stats(today time.Time, dueSoonDays int) (*task.Stats, error) {
	from := task.NewDate(today).String()
	until := task.NewDate(today.AddDate(0, 0, dueSoonDays)).String()

	var st task.Stats
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(status = 'completed'), 0),
			COALESCE(SUM(status = 'in_progress'), 0),
			COALESCE(SUM(deadline != '' AND deadline < ? AND status != 'completed'), 0),
			COALESCE(SUM(deadline != '' AND deadline >= ? AND deadline <= ? AND status != 'completed'), 0)
		FROM tasks`,
		from, from, until,
	).Scan(&st.Total, &st.Completed, &st.InProgress, &st.Overdue, &st.DueSoon)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	if st.Total > 0 {
		st.CompletionRate = math.Round(float64(st.Completed)*1000/float64(st.Total)) / 10
	}
	return &st, nil
}

// scanTask scans a single task using the given row scanner.
func scanTask(scan func(dest ...any) error) (*task.Task, error) {
	var t task.Task
	var id int64
	var status, priority, deadline string
	err := scan(&id, &t.Title, &t.Description, &status, &priority, &deadline, &t.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.ID = task.ID(strconv.FormatInt(id, 10))
	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	if t.Deadline, err = task.ParseDate(deadline); err != nil {
		return nil, fmt.Errorf("scan task %d: %w", id, err)
	}
	return &t, nil
}

func parseID(id task.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return n, nil
}

// unlessAll treats "all" as an unset dimension.
func unlessAll(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
