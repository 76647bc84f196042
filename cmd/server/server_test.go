package main

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Aneli0/atelie.works/internal/db"
	"github.com/Aneli0/atelie.works/internal/migrations"
	"github.com/Aneli0/atelie.works/internal/seed"
)

// newTestServer opens a throwaway migrated database with the default seed
// applied, so labor settings and the starter materials are available.
func newTestServer(t *testing.T) *server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "server-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(database); err != nil {
		t.Fatalf("run seed: %v", err)
	}

	return &server{db: database}
}

// testRouter mounts the product and budget routes so handlers that read URL
// parameters can be exercised end to end.
func testRouter(srv *server) http.Handler {
	r := chi.NewRouter()
	r.Post("/products/new", srv.handleProductNew)
	r.Post("/products/{id}/wizard", srv.handleProductWizardSubmit)
	r.Post("/products/{id}/line", srv.handleProductLineSelect)
	r.Post("/products/{id}/materials", srv.handleProductMaterialAdd)
	r.Post("/products/{id}/materials/{idx}/remove", srv.handleProductMaterialRemove)
	r.Post("/products/{id}/confirm", srv.handleProductConfirm)
	r.Post("/budgets/new", srv.handleBudgetNew)
	r.Post("/budgets/{id}/items", srv.handleBudgetItemAdd)
	r.Post("/budgets/{id}/items/{idx}/qty", srv.handleBudgetItemQuantity)
	r.Post("/budgets/{id}/items/{idx}/remove", srv.handleBudgetItemRemove)
	r.Post("/budgets/{id}/save", srv.handleBudgetSave)
	return r
}

// formRequest builds a POST request with an already-parsed form body.
func formRequest(t *testing.T, target string, values url.Values) *http.Request {
	t.Helper()

	r, err := http.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}
