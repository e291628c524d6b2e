package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarma/taskboard/internal/export"
	"github.com/imkarma/taskboard/internal/task"
)

// recorder captures the last request seen by the fake store.
type recorder struct {
	method   string
	path     string
	rawQuery string
	body     []byte
	header   http.Header
	calls    int
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.calls++
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.rawQuery = r.URL.RawQuery
		rec.header = r.Header.Clone()
		rec.body, _ = io.ReadAll(r.Body)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, 0)
	require.NoError(t, err)
	return c, rec
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("localhost:5000", 0)
	assert.Error(t, err)

	_, err = New("://", 0)
	assert.Error(t, err)
}

func TestListTasks_SendsOnlySetDimensions(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"title":"a","description":"b","status":"completed"},{"id":2,"title":"c","description":"d","status":"completed"}]`))
	})

	tasks, err := c.ListTasks(context.Background(), task.Filter{Status: task.StatusCompleted})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/tasks", rec.path)
	assert.Equal(t, "status=completed", rec.rawQuery)
	assert.NotEmpty(t, rec.header.Get("X-Request-ID"))
	require.Len(t, tasks, 2)
	assert.Equal(t, task.ID("1"), tasks[0].ID)
}

func TestListTasks_EmptyFilterHasNoQuery(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	tasks, err := c.ListTasks(context.Background(), task.Filter{})
	require.NoError(t, err)
	assert.Empty(t, rec.rawQuery)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestListTasks_SearchIsEncoded(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "milk & eggs", r.URL.Query().Get("search"))
		assert.False(t, r.URL.Query().Has("status"))
		w.Write([]byte(`[]`))
	})

	_, err := c.ListTasks(context.Background(), task.Filter{Search: "milk & eggs"})
	require.NoError(t, err)
	assert.Equal(t, "search=milk+%26+eggs", rec.rawQuery)
}

func TestListTasks_NonArrayBodyIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"nope"}`))
	})

	tasks, err := c.ListTasks(context.Background(), task.Filter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListTasks_OddDeadlineKeepsRow(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":1,"title":"a","description":"b","deadline":"2025-10-20"},
			{"id":2,"title":"c","description":"d","deadline":"Tue, 21 Oct 2025 00:00:00 GMT"},
			{"id":3,"title":"e","description":"f","deadline":20251022}
		]`))
	})

	tasks, err := c.ListTasks(context.Background(), task.Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, "2025-10-20", tasks[0].Deadline.String())
	assert.False(t, tasks[0].Deadline.IsZero())

	assert.True(t, tasks[1].Deadline.IsZero())
	assert.Equal(t, "Tue, 21 Oct 2025 00:00:00 GMT", tasks[1].Deadline.String())

	assert.True(t, tasks[2].Deadline.IsZero())
	assert.Equal(t, "20251022", tasks[2].Deadline.String())
}

func TestListTasks_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, r *http.Request)
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"id":`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler)
			_, err := c.ListTasks(context.Background(), task.Filter{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFetchFailed))
			assert.False(t, errors.Is(err, ErrCreateFailed))

			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.status, cerr.Status)
		})
	}
}

func TestListTasks_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, 0)
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background(), task.Filter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestGetStats(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_tasks":4,"completed_tasks":1,"in_progress_tasks":2,"overdue_tasks":1,"due_soon_tasks":0,"completion_rate":25.0}`))
	})

	stats, err := c.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/stats", rec.path)
	assert.Equal(t, task.Stats{Total: 4, Completed: 1, InProgress: 2, Overdue: 1, CompletionRate: 25}, *stats)
}

func TestGetStats_Unavailable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.GetStats(context.Background())
	assert.ErrorIs(t, err, ErrStatsUnavailable)
}

func TestGetCategories(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["home","work"]`))
	})

	cats, err := c.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "work"}, cats)
}

func TestGetCategories_Unavailable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetCategories(context.Background())
	assert.ErrorIs(t, err, ErrCategoriesUnavailable)
}

func TestCreateTask(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":12,"title":"Buy milk","description":"2 liters","status":"todo","priority":"medium","deadline":null,"category":""}`))
	})

	created, err := c.CreateTask(context.Background(), task.Draft{Title: "Buy milk", Description: "2 liters"})
	require.NoError(t, err)
	assert.Equal(t, task.ID("12"), created.ID)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "application/json", rec.header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.body, &body))
	assert.Equal(t, map[string]string{
		"title": "Buy milk", "description": "2 liters",
		"status": "", "priority": "", "deadline": "", "category": "",
	}, body)
}

func TestCreateTask_InvalidDraftNeverSent(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	_, err := c.CreateTask(context.Background(), task.Draft{Title: "Buy milk"})
	assert.ErrorIs(t, err, ErrCreateFailed)
	assert.ErrorIs(t, err, task.ErrDescriptionRequired)
	assert.Zero(t, rec.calls)
}

func TestCreateTask_Rejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad"}`, http.StatusBadRequest)
	})

	_, err := c.CreateTask(context.Background(), task.Draft{Title: "a", Description: "b"})
	assert.ErrorIs(t, err, ErrCreateFailed)
}

func TestDeleteTask(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"deleted"}`))
	})

	require.NoError(t, c.DeleteTask(context.Background(), "42"))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/tasks/42", rec.path)
}

func TestDeleteTask_Failure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := c.DeleteTask(context.Background(), "999")
	assert.ErrorIs(t, err, ErrDeleteFailed)
}

func TestPredictCategory(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"predicted_category":"Shopping"}`))
	})

	cat, err := c.PredictCategory(context.Background(), "Buy milk", "2 liters")
	require.NoError(t, err)
	assert.Equal(t, "Shopping", cat)
	assert.Equal(t, "/predict_category", rec.path)
	assert.JSONEq(t, `{"title":"Buy milk","description":"2 liters"}`, string(rec.body))
}

func TestPredictCategory_Failures(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := c.PredictCategory(context.Background(), "Buy milk", "")
	assert.ErrorIs(t, err, ErrPredictionFailed)
	assert.Zero(t, rec.calls)

	_, err = c.PredictCategory(context.Background(), "Buy milk", "2 liters")
	assert.ErrorIs(t, err, ErrPredictionFailed)
	assert.Equal(t, 1, rec.calls)
}

func TestExport_NeverSendsFilters(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("id,title\n1,a\n"))
	})

	data, err := c.Export(context.Background(), export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "/export", rec.path)
	assert.Equal(t, "format=csv", rec.rawQuery)
	assert.Equal(t, "id,title\n1,a\n", string(data))
}

func TestExport_Failures(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Export(context.Background(), export.Format("xml"))
	assert.ErrorIs(t, err, ErrExportFailed)
	assert.Zero(t, rec.calls)

	_, err = c.Export(context.Background(), export.FormatJSON)
	assert.ErrorIs(t, err, ErrExportFailed)
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindDeleteFailed, Op: "DELETE /tasks/1", Status: 404, Body: "not found"}
	assert.Equal(t, "delete failed (DELETE /tasks/1): status 404: not found", err.Error())

	cause := errors.New("connection refused")
	err = &Error{Kind: KindFetchFailed, Op: "GET /tasks", Cause: cause}
	assert.Equal(t, "fetch failed (GET /tasks): connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}
