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

	"github.com/Aneli0/atelie.works/internal/catalog"
	"github.com/Aneli0/atelie.works/internal/pricing"
	"github.com/Aneli0/atelie.works/internal/wizard"
)

type productsViewData struct {
	baseViewData
	Products []catalog.Product
}

type wizardViewData struct {
	baseViewData
	Product    catalog.Product
	Materials  []catalog.Material
	Labor      catalog.LaborSettings
	Breakdown  pricing.Breakdown
	Step       wizard.Step
	StepPos    int
	StepTotal  int
	Categories []catalog.Category
	Lines      []catalog.Line
}

func (s *server) handleProductsPage(w http.ResponseWriter, r *http.Request) {
	products, err := s.listProducts(true)
	if err != nil {
		http.Error(w, "failed to load products", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "products.html", productsViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Products: products,
	})
}

// handleProductNew opens a fresh draft with the wizard defaults and the
// studio's default margin, then enters the wizard.
func (s *server) handleProductNew(w http.ResponseWriter, r *http.Request) {
	labor, err := s.getLaborSettings()
	if err != nil {
		http.Error(w, "failed to load labor settings", http.StatusInternalServerError)
		return
	}

	id := catalog.NewID()
	_, err = s.db.Exec(`
		INSERT INTO products (id, category, line, assembly_minutes, printing_sheets, margin_percent, step)
		VALUES (?, ?, ?, 5, 1, ?, ?)
	`, id, catalog.CategoryBoxes, catalog.LineBasic, labor.DefaultMargin, wizard.First())
	if err != nil {
		http.Error(w, "failed to create product draft", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/products/"+id+"/wizard", http.StatusSeeOther)
}

func (s *server) handleProductWizard(w http.ResponseWriter, r *http.Request) {
	p, err := s.getProduct(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	labor, err := s.getLaborSettings()
	if err != nil {
		http.Error(w, "failed to load labor settings", http.StatusInternalServerError)
		return
	}

	materials, err := s.listMaterials()
	if err != nil {
		http.Error(w, "failed to load materials", http.StatusInternalServerError)
		return
	}

	step := wizard.Step(p.Step)
	pos, total := wizard.Position(step)
	s.renderTemplate(w, "product_wizard.html", wizardViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Product:    *p,
		Materials:  materials,
		Labor:      labor,
		Breakdown:  productBreakdown(*p, labor),
		Step:       step,
		StepPos:    pos,
		StepTotal:  total,
		Categories: catalog.Categories,
		Lines:      catalog.Lines,
	})
}

// handleProductWizardSubmit saves the fields of the current step and then
// moves the draft forward or backward. Transition rules live in the wizard
// package; a guard failure leaves the draft where it is.
func (s *server) handleProductWizardSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.getProduct(id)
	if err != nil {
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if err := applyStepForm(p, r); err != nil {
		s.redirectWizard(w, r, id, err.Error())
		return
	}

	step := wizard.Step(p.Step)
	switch r.FormValue("action") {
	case "back":
		step = wizard.Back(step)
	default:
		next, err := wizard.Next(step, wizard.Guard{Name: p.Name})
		if err != nil {
			// Persist what was typed before reporting the guard failure.
			if saveErr := s.saveProductDraft(p); saveErr != nil {
				http.Error(w, "failed to save product draft", http.StatusInternalServerError)
				return
			}
			s.redirectWizard(w, r, id, err.Error())
			return
		}
		step = next
	}
	p.Step = string(step)

	if err := s.saveProductDraft(p); err != nil {
		http.Error(w, "failed to save product draft", http.StatusInternalServerError)
		return
	}

	s.redirectWizard(w, r, id, "")
}

// handleProductLineSelect switches the product line and overwrites the
// observations with the generated description. Explicit selection always
// clobbers; the form never merges.
func (s *server) handleProductLineSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.getProduct(id)
	if err != nil {
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	line := catalog.Line(r.FormValue("linha"))
	if !line.Valid() {
		s.redirectWizard(w, r, id, "linha deve ser BÁSICA, CLÁSSICA ou LUXO")
		return
	}

	// Keep the typed name when the line buttons submit the info form.
	if nome, ok := r.Form["nome"]; ok && len(nome) > 0 {
		p.Name = strings.TrimSpace(nome[0])
	}
	p.Line = line
	p.Observations = catalog.AutoDescription(p.Category, line)

	if err := s.saveProductDraft(p); err != nil {
		http.Error(w, "failed to save product draft", http.StatusInternalServerError)
		return
	}

	s.redirectWizard(w, r, id, "")
}

// handleProductMaterialAdd copies the live material into the draft as a
// snapshot. A material that no longer exists is skipped without failing.
func (s *server) handleProductMaterialAdd(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.getProduct(id)
	if err != nil {
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	m, err := s.getMaterial(r.FormValue("material_id"))
	if err != nil {
		http.Error(w, "failed to load material", http.StatusInternalServerError)
		return
	}
	if m == nil {
		s.redirectWizard(w, r, id, "")
		return
	}

	p.Materials = append(p.Materials, catalog.NewProductMaterial(*m))

	if err := s.saveProductDraft(p); err != nil {
		http.Error(w, "failed to save product draft", http.StatusInternalServerError)
		return
	}

	s.redirectWizard(w, r, id, "")
}

func (s *server) handleProductMaterialRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.getProduct(id)
	if err != nil {
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil || idx < 0 || idx >= len(p.Materials) {
		s.redirectWizard(w, r, id, "")
		return
	}

	p.Materials = append(p.Materials[:idx], p.Materials[idx+1:]...)

	if err := s.saveProductDraft(p); err != nil {
		http.Error(w, "failed to save product draft", http.StatusInternalServerError)
		return
	}

	s.redirectWizard(w, r, id, "")
}

// handleProductConfirm recomputes every derived figure from the snapshots and
// the current labor settings, then persists the product into the catalog.
func (s *server) handleProductConfirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.getProduct(id)
	if err != nil {
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if raw := r.FormValue("margem"); raw != "" {
		margin, err := parseMarginPercent(raw, "margem")
		if err != nil {
			s.redirectWizard(w, r, id, err.Error())
			return
		}
		p.MarginPercent = margin
	}

	if err := wizard.Confirm(wizard.Step(p.Step), wizard.Guard{Name: p.Name}); err != nil {
		s.redirectWizard(w, r, id, err.Error())
		return
	}

	labor, err := s.getLaborSettings()
	if err != nil {
		http.Error(w, "failed to load labor settings", http.StatusInternalServerError)
		return
	}

	b := productBreakdown(*p, labor)
	materialsJSON, err := json.Marshal(p.Materials)
	if err != nil {
		http.Error(w, "failed to save product", http.StatusInternalServerError)
		return
	}

	_, err = s.db.Exec(`
		UPDATE products
		SET
			category = ?,
			name = ?,
			line = ?,
			observations = ?,
			assembly_minutes = ?,
			printing_sheets = ?,
			materials_json = ?,
			margin_percent = ?,
			cost_materials = ?,
			cost_labor = ?,
			cost_printing = ?,
			cost_total = ?,
			sale_price = ?,
			net_profit = ?,
			confirmed = 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		p.Category, p.Name, p.Line, p.Observations,
		p.AssemblyMinutes, p.PrintingSheets, string(materialsJSON), p.MarginPercent,
		b.MaterialsCost, b.LaborCost, b.PrintingCost, b.TotalCost, b.SalePrice, b.NetProfit,
		id,
	)
	if err != nil {
		http.Error(w, "failed to confirm product", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/products?success="+url.QueryEscape("Produto salvo no catálogo"), http.StatusSeeOther)
}

// handleProductEdit reopens the full draft; derived fields are rebuilt on the
// next confirmation from current labor settings and the frozen snapshots.
func (s *server) handleProductEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := s.db.Exec(`
		UPDATE products SET step = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, wizard.First(), id)
	if err != nil {
		http.Error(w, "failed to reopen product", http.StatusInternalServerError)
		return
	}
	if affected, err := result.RowsAffected(); err != nil || affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/products/"+id+"/wizard", http.StatusSeeOther)
}

// handleProductDelete removes the product from the catalog only; budgets that
// quoted it keep their own snapshots.
func (s *server) handleProductDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.db.Exec(`DELETE FROM products WHERE id = ?`, id); err != nil {
		http.Error(w, "failed to delete product", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/products?success="+url.QueryEscape("Produto removido"), http.StatusSeeOther)
}

// applyStepForm copies the submitted fields of the draft's current step onto
// the product, validating before any write happens.
func applyStepForm(p *catalog.Product, r *http.Request) error {
	switch wizard.Step(p.Step) {
	case wizard.StepCategory:
		c := catalog.Category(r.FormValue("categoria"))
		if !c.Valid() {
			return fmt.Errorf("categoria deve ser Caixinhas ou Lembrancinhas")
		}
		p.Category = c
	case wizard.StepInfo:
		p.Name = strings.TrimSpace(r.FormValue("nome"))
		p.Observations = r.FormValue("observacoes")
	case wizard.StepCosts:
		minutes, err := parseNonNegativeFloat(r.FormValue("tempo_montagem"), "tempo_montagem")
		if err != nil {
			return err
		}
		sheets, err := parseNonNegativeFloat(r.FormValue("folhas_impressao"), "folhas_impressao")
		if err != nil {
			return err
		}
		for i := range p.Materials {
			raw := r.FormValue("qtd_" + strconv.Itoa(i))
			if raw == "" {
				continue
			}
			qty, err := parseNonNegativeFloat(raw, "qtd_"+strconv.Itoa(i))
			if err != nil {
				return err
			}
			p.Materials[i].Quantity = qty
		}
		p.AssemblyMinutes = minutes
		p.PrintingSheets = sheets
	case wizard.StepPrice:
		margin, err := parseMarginPercent(r.FormValue("margem"), "margem")
		if err != nil {
			return err
		}
		p.MarginPercent = margin
	}
	return nil
}

// productBreakdown composes the derived figures from the draft's snapshots
// and the current labor settings.
func productBreakdown(p catalog.Product, labor catalog.LaborSettings) pricing.Breakdown {
	in := pricing.ProductInput{
		AssemblyMinutes: p.AssemblyMinutes,
		PrintingSheets:  p.PrintingSheets,
		MarginPercent:   p.MarginPercent,
	}
	for _, m := range p.Materials {
		in.Materials = append(in.Materials, pricing.MaterialLine{UnitCost: m.UnitCostSnapshot, Quantity: m.Quantity})
	}
	return pricing.Compose(in, pricing.Labor{
		CostPerMinute:        labor.CostPerMinute,
		PrintingCostPerSheet: labor.PrintingCostPerSheet,
	})
}

func (s *server) redirectWizard(w http.ResponseWriter, r *http.Request, id, errMessage string) {
	target := "/products/" + id + "/wizard"
	if errMessage != "" {
		target += "?error=" + url.QueryEscape(errMessage)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *server) saveProductDraft(p *catalog.Product) error {
	materialsJSON, err := json.Marshal(p.Materials)
	if err != nil {
		return fmt.Errorf("marshal product materials: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE products
		SET
			category = ?,
			name = ?,
			line = ?,
			observations = ?,
			assembly_minutes = ?,
			printing_sheets = ?,
			materials_json = ?,
			margin_percent = ?,
			step = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		p.Category, p.Name, p.Line, p.Observations,
		p.AssemblyMinutes, p.PrintingSheets, string(materialsJSON), p.MarginPercent,
		p.Step, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product draft: %w", err)
	}
	return nil
}

func (s *server) listProducts(confirmedOnly bool) ([]catalog.Product, error) {
	query := `
		SELECT id, category, name, line, observations, assembly_minutes, printing_sheets,
			materials_json, margin_percent, cost_materials, cost_labor, cost_printing,
			cost_total, sale_price, net_profit, step, confirmed, created_at, updated_at
		FROM products
	`
	if confirmedOnly {
		query += ` WHERE confirmed = 1`
	}
	query += ` ORDER BY datetime(created_at) DESC, id DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// getProduct returns nil without error when the id no longer exists.
func (s *server) getProduct(id string) (*catalog.Product, error) {
	row := s.db.QueryRow(`
		SELECT id, category, name, line, observations, assembly_minutes, printing_sheets,
			materials_json, margin_percent, cost_materials, cost_labor, cost_printing,
			cost_total, sale_price, net_profit, step, confirmed, created_at, updated_at
		FROM products
		WHERE id = ?
	`, id)

	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanProduct(scan func(...any) error) (*catalog.Product, error) {
	var p catalog.Product
	var materialsJSON string
	if err := scan(
		&p.ID, &p.Category, &p.Name, &p.Line, &p.Observations,
		&p.AssemblyMinutes, &p.PrintingSheets, &materialsJSON, &p.MarginPercent,
		&p.CostMaterials, &p.CostLabor, &p.CostPrinting, &p.CostTotal,
		&p.SalePrice, &p.NetProfit, &p.Step, &p.Confirmed, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	if err := json.Unmarshal([]byte(materialsJSON), &p.Materials); err != nil {
		return nil, fmt.Errorf("decode product materials: %w", err)
	}
	return &p, nil
}
