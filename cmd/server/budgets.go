package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Aneli0/atelie.works/internal/budget"
	"github.com/Aneli0/atelie.works/internal/catalog"
	"github.com/Aneli0/atelie.works/internal/pdf"
)

type budgetsViewData struct {
	baseViewData
	Budgets []catalog.Budget
	Search  string
}

type budgetViewData struct {
	baseViewData
	Budget   catalog.Budget
	Products []catalog.Product
	Studio   catalog.StudioSettings
}

// handleBudgetsPage lists saved budgets, newest first, optionally filtered by
// client name or phone. Drafts stay out of the list until saved.
func (s *server) handleBudgetsPage(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	budgets, err := s.listBudgets(search)
	if err != nil {
		http.Error(w, "failed to load budgets", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "budgets.html", budgetsViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Budgets: budgets,
		Search:  search,
	})
}

func (s *server) handleBudgetNew(w http.ResponseWriter, r *http.Request) {
	id := catalog.NewID()
	if _, err := s.db.Exec(`INSERT INTO budgets (id) VALUES (?)`, id); err != nil {
		http.Error(w, "failed to create budget draft", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/budgets/"+id, http.StatusSeeOther)
}

func (s *server) handleBudgetPage(w http.ResponseWriter, r *http.Request) {
	b, err := s.getBudget(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "failed to load budget", http.StatusInternalServerError)
		return
	}
	if b == nil {
		http.NotFound(w, r)
		return
	}

	products, err := s.listProducts(true)
	if err != nil {
		http.Error(w, "failed to load products", http.StatusInternalServerError)
		return
	}

	studio, err := s.getStudioSettings()
	if err != nil {
		http.Error(w, "failed to load studio settings", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "budget_detail.html", budgetViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Budget:   *b,
		Products: products,
		Studio:   studio,
	})
}

// handleBudgetItemAdd snapshots the chosen product into the budget. Products
// that vanished or were never confirmed are skipped without failing. Items
// can only change while the budget is a draft; saved budgets are read-only.
func (s *server) handleBudgetItemAdd(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := s.getBudget(id)
	if err != nil {
		http.Error(w, "failed to load budget", http.StatusInternalServerError)
		return
	}
	if b == nil {
		http.NotFound(w, r)
		return
	}
	if !b.Draft {
		s.redirectBudget(w, r, id, "orçamento salvo não pode ser alterado")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	p, err := s.getProduct(r.FormValue("product_id"))
	if err != nil {
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}

	if budget.AddItem(b, p) {
		if err := s.saveBudget(b); err != nil {
			http.Error(w, "failed to save budget", http.StatusInternalServerError)
			return
		}
	}

	s.redirectBudget(w, r, id, "")
}

func (s *server) handleBudgetItemQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := s.getBudget(id)
	if err != nil {
		http.Error(w, "failed to load budget", http.StatusInternalServerError)
		return
	}
	if b == nil {
		http.NotFound(w, r)
		return
	}
	if !b.Draft {
		s.redirectBudget(w, r, id, "orçamento salvo não pode ser alterado")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		s.redirectBudget(w, r, id, "")
		return
	}

	qty, err := parseNonNegativeFloat(r.FormValue("quantidade"), "quantidade")
	if err != nil {
		s.redirectBudget(w, r, id, err.Error())
		return
	}

	if err := budget.UpdateQuantity(b, idx, qty); err != nil {
		s.redirectBudget(w, r, id, err.Error())
		return
	}

	if err := s.saveBudget(b); err != nil {
		http.Error(w, "failed to save budget", http.StatusInternalServerError)
		return
	}

	s.redirectBudget(w, r, id, "")
}

func (s *server) handleBudgetItemRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := s.getBudget(id)
	if err != nil {
		http.Error(w, "failed to load budget", http.StatusInternalServerError)
		return
	}
	if b == nil {
		http.NotFound(w, r)
		return
	}
	if !b.Draft {
		s.redirectBudget(w, r, id, "orçamento salvo não pode ser alterado")
		return
	}

	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		s.redirectBudget(w, r, id, "")
		return
	}

	budget.RemoveItem(b, idx)

	if err := s.saveBudget(b); err != nil {
		http.Error(w, "failed to save budget", http.StatusInternalServerError)
		return
	}

	s.redirectBudget(w, r, id, "")
}

// handleBudgetSave fills in the client data and promotes the draft to a saved
// budget, making it visible on the listing.
func (s *server) handleBudgetSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := s.getBudget(id)
	if err != nil {
		http.Error(w, "failed to load budget", http.StatusInternalServerError)
		return
	}
	if b == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	b.ClientName = strings.TrimSpace(r.FormValue("nome_cliente"))
	b.ClientPhone = strings.TrimSpace(r.FormValue("telefone_cliente"))

	if err := budget.ValidateSave(*b); err != nil {
		// Keep the typed client data on the draft even when validation fails.
		if saveErr := s.saveBudget(b); saveErr != nil {
			http.Error(w, "failed to save budget", http.StatusInternalServerError)
			return
		}
		s.redirectBudget(w, r, id, err.Error())
		return
	}

	b.Draft = false
	if err := s.saveBudget(b); err != nil {
		http.Error(w, "failed to save budget", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/budgets?success="+url.QueryEscape("Orçamento salvo"), http.StatusSeeOther)
}

func (s *server) handleBudgetDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.db.Exec(`DELETE FROM budgets WHERE id = ?`, id); err != nil {
		http.Error(w, "failed to delete budget", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/budgets?success="+url.QueryEscape("Orçamento removido"), http.StatusSeeOther)
}

func (s *server) handleBudgetPDF(w http.ResponseWriter, r *http.Request) {
	b, err := s.getBudget(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "failed to load budget", http.StatusInternalServerError)
		return
	}
	if b == nil {
		http.NotFound(w, r)
		return
	}

	studio, err := s.getStudioSettings()
	if err != nil {
		http.Error(w, "failed to load studio settings", http.StatusInternalServerError)
		return
	}

	doc, err := pdf.New().Generate(*b, studio)
	if err != nil {
		http.Error(w, "failed to generate pdf", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.Filename(*b)))
	w.Write(doc)
}

func (s *server) handleBudgetShare(w http.ResponseWriter, r *http.Request) {
	b, err := s.getBudget(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "failed to load budget", http.StatusInternalServerError)
		return
	}
	if b == nil {
		http.NotFound(w, r)
		return
	}

	studio, err := s.getStudioSettings()
	if err != nil {
		http.Error(w, "failed to load studio settings", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, budget.ShareURL(*b, studio.Name), http.StatusSeeOther)
}

func (s *server) redirectBudget(w http.ResponseWriter, r *http.Request, id, errMessage string) {
	target := "/budgets/" + id
	if errMessage != "" {
		target += "?error=" + url.QueryEscape(errMessage)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *server) saveBudget(b *catalog.Budget) error {
	itemsJSON, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("marshal budget items: %w", err)
	}

	draft := 0
	if b.Draft {
		draft = 1
	}

	_, err = s.db.Exec(`
		UPDATE budgets
		SET client_name = ?, client_phone = ?, items_json = ?, total_general = ?, draft = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, b.ClientName, b.ClientPhone, string(itemsJSON), b.GrandTotal, draft, b.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return nil
}

func (s *server) listBudgets(search string) ([]catalog.Budget, error) {
	query := `
		SELECT id, client_name, client_phone, items_json, total_general, draft, created_at, updated_at
		FROM budgets
		WHERE draft = 0
	`
	args := []any{}
	if search != "" {
		query += ` AND (client_name LIKE ? OR client_phone LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY datetime(created_at) DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]catalog.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}

	return budgets, nil
}

// getBudget returns nil without error when the id no longer exists.
func (s *server) getBudget(id string) (*catalog.Budget, error) {
	row := s.db.QueryRow(`
		SELECT id, client_name, client_phone, items_json, total_general, draft, created_at, updated_at
		FROM budgets
		WHERE id = ?
	`, id)

	b, err := scanBudget(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBudget(scan func(...any) error) (*catalog.Budget, error) {
	var b catalog.Budget
	var itemsJSON string
	var draft int
	if err := scan(
		&b.ID, &b.ClientName, &b.ClientPhone, &itemsJSON, &b.GrandTotal,
		&draft, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan budget: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &b.Items); err != nil {
		return nil, fmt.Errorf("decode budget items: %w", err)
	}
	b.Draft = draft == 1
	return &b, nil
}
