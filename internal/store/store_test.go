package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/imkarma/taskboard/internal/task"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustCreate inserts a task or fails the test.
func mustCreate(t *testing.T, s *Store, d task.Draft) *task.Task {
	t.Helper()
	created, err := s.CreateTask(d)
	if err != nil {
		t.Fatalf("CreateTask %q: %v", d.Title, err)
	}
	return created
}

func TestNew_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file not created")
	}
}

func TestNew_MigratesLegacySchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT '',
		deadline TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	INSERT INTO tasks (title, description, created_at, updated_at) VALUES ('Old', 'row', '2024-01-01', '2024-01-01');`)
	if err != nil {
		t.Fatalf("seed legacy schema: %v", err)
	}
	db.Close()

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New on legacy db: %v", err)
	}
	defer s.Close()

	tasks, err := s.ListTasks(task.Filter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Category != "" {
		t.Fatalf("expected migrated legacy row with empty category, got %+v", tasks)
	}
}

func TestCreateTask(t *testing.T) {
	s := testStore(t)

	created, err := s.CreateTask(task.Draft{
		Title:       "Buy milk",
		Description: "2 liters",
		Status:      "todo",
		Priority:    "high",
		Deadline:    "2025-03-01",
		Category:    "Shopping",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if created.ID != "1" {
		t.Errorf("expected ID 1, got %s", created.ID)
	}
	if created.Title != "Buy milk" {
		t.Errorf("expected title 'Buy milk', got %q", created.Title)
	}
	if created.Status != task.StatusTodo {
		t.Errorf("expected status todo, got %s", created.Status)
	}
	if created.Priority != task.PriorityHigh {
		t.Errorf("expected priority high, got %s", created.Priority)
	}
	if created.Deadline.String() != "2025-03-01" {
		t.Errorf("expected deadline 2025-03-01, got %s", created.Deadline)
	}
	if created.Category != "Shopping" {
		t.Errorf("expected category Shopping, got %q", created.Category)
	}
}

func TestCreateTask_OptionalFieldsStayUnset(t *testing.T) {
	s := testStore(t)

	created := mustCreate(t, s, task.Draft{Title: "Buy milk", Description: "2 liters"})
	got, err := s.GetTask(created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Status != "" || got.Priority != "" || !got.Deadline.IsZero() || got.Category != "" {
		t.Errorf("expected unset optional fields, got %+v", got)
	}
}

func TestCreateTask_RejectsInvalidDraft(t *testing.T) {
	s := testStore(t)

	if _, err := s.CreateTask(task.Draft{Title: "only title"}); !errors.Is(err, task.ErrDescriptionRequired) {
		t.Fatalf("expected ErrDescriptionRequired, got %v", err)
	}
	if _, err := s.CreateTask(task.Draft{Title: "a", Description: "b", Status: "done"}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestGetTask_NotFound(t *testing.T) {
	s := testStore(t)

	if _, err := s.GetTask("999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetTask("abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-numeric id, got %v", err)
	}
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	mustCreate(t, s, task.Draft{Title: "Write report", Description: "Q3 numbers", Status: "completed", Priority: "high", Category: "work"})
	mustCreate(t, s, task.Draft{Title: "Buy bread", Description: "rye", Status: "todo", Priority: "low", Category: "home"})
	mustCreate(t, s, task.Draft{Title: "Review PR", Description: "100% coverage claim", Status: "in_progress", Priority: "high", Category: "work"})
	mustCreate(t, s, task.Draft{Title: "Call plumber", Description: "kitchen_sink leak", Status: "completed", Priority: "medium"})
}

func TestListTasks(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	tasks, err := s.ListTasks(task.Filter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "1" || tasks[3].ID != "4" {
		t.Errorf("expected creation order, got %s..%s", tasks[0].ID, tasks[3].ID)
	}
}

func TestListTasks_Empty(t *testing.T) {
	s := testStore(t)

	tasks, err := s.ListTasks(task.Filter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestListTasks_Filters(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	tests := []struct {
		name   string
		filter task.Filter
		want   []task.ID
	}{
		{"status", task.Filter{Status: task.StatusCompleted}, []task.ID{"1", "4"}},
		{"priority", task.Filter{Priority: task.PriorityHigh}, []task.ID{"1", "3"}},
		{"category", task.Filter{Category: "work"}, []task.ID{"1", "3"}},
		{"combined", task.Filter{Status: task.StatusCompleted, Category: "work"}, []task.ID{"1"}},
		{"all is unset", task.Filter{Status: "all", Priority: "ALL", Category: "all"}, []task.ID{"1", "2", "3", "4"}},
		{"search title ignores case", task.Filter{Search: "REPORT"}, []task.ID{"1"}},
		{"search description", task.Filter{Search: "rye"}, []task.ID{"2"}},
		{"search percent is literal", task.Filter{Search: "100%"}, []task.ID{"3"}},
		{"search underscore is literal", task.Filter{Search: "n_s"}, []task.ID{"4"}},
		{"no match", task.Filter{Search: "zebra"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := s.ListTasks(tt.filter)
			if err != nil {
				t.Fatalf("ListTasks: %v", err)
			}
			var got []task.ID
			for _, tk := range tasks {
				got = append(got, tk.ID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestListTasks_SearchFoldsNonASCII(t *testing.T) {
	s := testStore(t)
	for _, d := range []task.Draft{
		{Title: "École trip", Description: "permission slip"},
		{Title: "Groceries", Description: "ÄPFEL und Brot"},
		{Title: "Report", Description: "Q3"},
	} {
		if _, err := s.CreateTask(d); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}

	tests := []struct {
		search string
		want   task.ID
	}{
		{"École", "1"},
		{"école", "1"},
		{"ÉCOLE", "1"},
		{"äpfel", "2"},
	}
	for _, tt := range tests {
		tasks, err := s.ListTasks(task.Filter{Search: tt.search})
		if err != nil {
			t.Fatalf("ListTasks(%q): %v", tt.search, err)
		}
		if len(tasks) != 1 || tasks[0].ID != tt.want {
			t.Errorf("search %q: expected [%s], got %v", tt.search, tt.want, tasks)
		}
	}
}

func TestDeleteTask(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	if err := s.DeleteTask("2"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	tasks, _ := s.AllTasks()
	for _, tk := range tasks {
		if tk.ID == "2" {
			t.Fatal("deleted task still listed")
		}
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	if err := s.DeleteTask("2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCategories(t *testing.T) {
	s := testStore(t)

	cats, err := s.Categories()
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 0 {
		t.Fatalf("expected no categories, got %v", cats)
	}

	seed(t, s)
	cats, err = s.Categories()
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 2 || cats[0] != "home" || cats[1] != "work" {
		t.Fatalf("expected [home work], got %v", cats)
	}
}

func TestStats(t *testing.T) {
	s := testStore(t)
	today := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

	mustCreate(t, s, task.Draft{Title: "a", Description: "overdue", Status: "todo", Deadline: "2025-06-09"})
	mustCreate(t, s, task.Draft{Title: "b", Description: "done late", Status: "completed", Deadline: "2025-06-01"})
	mustCreate(t, s, task.Draft{Title: "c", Description: "due today", Status: "in_progress", Deadline: "2025-06-10"})
	mustCreate(t, s, task.Draft{Title: "d", Description: "due at edge", Deadline: "2025-06-13"})
	mustCreate(t, s, task.Draft{Title: "e", Description: "later", Deadline: "2025-06-14"})
	mustCreate(t, s, task.Draft{Title: "f", Description: "no deadline", Status: "completed"})

	st, err := s.Stats(today, 3)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := task.Stats{Total: 6, Completed: 2, InProgress: 1, Overdue: 1, DueSoon: 2, CompletionRate: 33.3}
	if *st != want {
		t.Fatalf("expected %+v, got %+v", want, *st)
	}
}

func TestStats_Empty(t *testing.T) {
	s := testStore(t)

	st, err := s.Stats(time.Now(), 3)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if *st != (task.Stats{}) {
		t.Fatalf("expected zero stats, got %+v", *st)
	}
}
