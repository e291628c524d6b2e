package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/imkarma/taskboard/internal/client"
	"github.com/imkarma/taskboard/internal/config"
)

// fakeStore serves canned bodies; a path missing from bodies answers 500.
func fakeStore(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchOverview_StatsAndCategoriesAreBestEffort(t *testing.T) {
	srv := fakeStore(t, map[string]string{
		"/tasks": `[{"id":1,"title":"a","description":"b"}]`,
	})
	cl, err := client.New(srv.URL, 0)
	if err != nil {
		t.Fatal(err)
	}

	ov, err := fetchOverview(context.Background(), cl)
	if err != nil {
		t.Fatalf("fetchOverview: %v", err)
	}
	if len(ov.tasks) != 1 {
		t.Errorf("expected 1 task, got %d", len(ov.tasks))
	}
	if ov.stats != nil {
		t.Errorf("expected no stats, got %+v", ov.stats)
	}
	if ov.categories != nil {
		t.Errorf("expected no categories, got %v", ov.categories)
	}
}

func TestFetchOverview_ListFailureIsAnError(t *testing.T) {
	srv := fakeStore(t, map[string]string{
		"/stats":      `{"total_tasks":1}`,
		"/categories": `["Work"]`,
	})
	cl, err := client.New(srv.URL, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := fetchOverview(context.Background(), cl); err == nil {
		t.Fatal("expected an error when the task list fails")
	}
}

func TestRunStatus_StatsFailureIsNotFatal(t *testing.T) {
	srv := fakeStore(t, map[string]string{
		"/tasks":      `[{"id":1,"title":"a","description":"b","status":"todo"}]`,
		"/categories": `["Work"]`,
	})

	prevCfg, prevErr := cfg, cfgErr
	t.Cleanup(func() { cfg, cfgErr = prevCfg, prevErr })
	cfg = config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfgErr = nil

	statusCmd.SetContext(context.Background())
	if err := runStatus(statusCmd, nil); err != nil {
		t.Fatalf("runStatus: %v", err)
	}
}
