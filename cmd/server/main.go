package main

import (
	"database/sql"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Aneli0/atelie.works/internal/catalog"
	"github.com/Aneli0/atelie.works/internal/config"
	"github.com/Aneli0/atelie.works/internal/db"
	"github.com/Aneli0/atelie.works/internal/migrations"
	"github.com/Aneli0/atelie.works/internal/seed"
)

type server struct {
	auth *authService
	db   *sql.DB
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type loginViewData struct {
	baseViewData
}

type dashboardViewData struct {
	baseViewData
	MaterialCount int
	ProductCount  int
	BudgetCount   int
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database)
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seed: %d defaults inserted", stats.Inserts)
	}

	auth := newAuthService(database, cfg.SessionSecret)
	if err := auth.ensureAdminUser(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	srv := &server{auth: auth, db: database}

	r := chi.NewRouter()
	r.Use(srv.authMiddleware)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.Get("/", srv.handleDashboard)
	r.Get("/help", srv.handleHelp)
	r.Get("/login", srv.handleLoginForm)
	r.Post("/login", srv.handleLoginSubmit)
	r.Post("/logout", srv.handleLogout)

	r.Get("/settings/studio", srv.handleStudioSettingsForm)
	r.Post("/settings/studio", srv.handleStudioSettingsSubmit)
	r.Get("/settings/labor", srv.handleLaborSettingsForm)
	r.Post("/settings/labor", srv.handleLaborSettingsSubmit)

	r.Get("/materials", srv.handleMaterialsPage)
	r.Post("/materials", srv.handleMaterialCreate)
	r.Post("/materials/{id}", srv.handleMaterialUpdate)
	r.Post("/materials/{id}/delete", srv.handleMaterialDelete)

	r.Get("/products", srv.handleProductsPage)
	r.Post("/products/new", srv.handleProductNew)
	r.Get("/products/{id}/wizard", srv.handleProductWizard)
	r.Post("/products/{id}/wizard", srv.handleProductWizardSubmit)
	r.Post("/products/{id}/line", srv.handleProductLineSelect)
	r.Post("/products/{id}/materials", srv.handleProductMaterialAdd)
	r.Post("/products/{id}/materials/{idx}/remove", srv.handleProductMaterialRemove)
	r.Post("/products/{id}/confirm", srv.handleProductConfirm)
	r.Post("/products/{id}/edit", srv.handleProductEdit)
	r.Post("/products/{id}/delete", srv.handleProductDelete)

	r.Get("/budgets", srv.handleBudgetsPage)
	r.Post("/budgets/new", srv.handleBudgetNew)
	r.Get("/budgets/{id}", srv.handleBudgetPage)
	r.Post("/budgets/{id}/items", srv.handleBudgetItemAdd)
	r.Post("/budgets/{id}/items/{idx}/qty", srv.handleBudgetItemQuantity)
	r.Post("/budgets/{id}/items/{idx}/remove", srv.handleBudgetItemRemove)
	r.Post("/budgets/{id}/save", srv.handleBudgetSave)
	r.Post("/budgets/{id}/delete", srv.handleBudgetDelete)
	r.Get("/budgets/{id}/pdf", srv.handleBudgetPDF)
	r.Get("/budgets/{id}/share", srv.handleBudgetShare)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardViewData{}
	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM materials`, &data.MaterialCount},
		{`SELECT COUNT(*) FROM products WHERE confirmed = 1`, &data.ProductCount},
		{`SELECT COUNT(*) FROM budgets WHERE draft = 0`, &data.BudgetCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dst); err != nil {
			http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
			return
		}
	}

	s.renderTemplate(w, "home.html", data)
}

func (s *server) handleHelp(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, "help.html", baseViewData{})
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if isAuthenticated(r, s.auth) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(email, password)
	if err != nil {
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		s.renderTemplate(w, "login.html", loginViewData{baseViewData: baseViewData{ErrorMessage: "Credenciais inválidas. Tente novamente."}})
		return
	}

	s.auth.setSessionCookie(w, email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) renderTemplate(w http.ResponseWriter, page string, data any) {
	templates, err := template.New("layout.html").Funcs(template.FuncMap{
		"brl": catalog.FormatBRL,
		"qty": catalog.FormatQuantity,
		"mul": func(a, b float64) float64 { return a * b },
	}).ParseFiles(
		"web/templates/layout.html",
		"web/templates/"+page,
	)
	if err != nil {
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" || r.URL.Path == "/static" || strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		if !isAuthenticated(r, s.auth) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request, auth *authService) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}

	_, ok := auth.verifySessionValue(cookie.Value)
	return ok
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s deve ser numérico", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s deve ser maior ou igual a 0", field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s deve ser numérico", field)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s deve ser maior que 0", field)
	}
	return value, nil
}

// parseMarginPercent bounds the profit markup. Margin is applied over cost,
// so it may exceed 100%; the form accepts up to 200%.
func parseMarginPercent(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value > 200 {
		return 0, fmt.Errorf("%s deve estar entre 0 e 200", field)
	}
	return value, nil
}
