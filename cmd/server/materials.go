package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Aneli0/atelie.works/internal/catalog"
	"github.com/Aneli0/atelie.works/internal/pricing"
)

type materialsViewData struct {
	baseViewData
	Materials []catalog.Material
	Units     []catalog.Unit
}

func (s *server) handleMaterialsPage(w http.ResponseWriter, r *http.Request) {
	materials, err := s.listMaterials()
	if err != nil {
		http.Error(w, "failed to load materials", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "materials.html", materialsViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Materials: materials,
		Units:     catalog.Units,
	})
}

func (s *server) handleMaterialCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	m, err := parseMaterialForm(r)
	if err != nil {
		http.Redirect(w, r, "/materials?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO materials (id, name, unit, purchase_mode, package_price, package_quantity, unit_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, catalog.NewID(), m.Name, m.Unit, m.PurchaseMode, m.PackagePrice, m.PackageQuantity, m.UnitCost)
	if err != nil {
		http.Error(w, "failed to create material", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/materials?success="+url.QueryEscape("Material criado com sucesso"), http.StatusSeeOther)
}

func (s *server) handleMaterialUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	m, err := parseMaterialForm(r)
	if err != nil {
		http.Redirect(w, r, "/materials?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	result, err := s.db.Exec(`
		UPDATE materials
		SET
			name = ?,
			unit = ?,
			purchase_mode = ?,
			package_price = ?,
			package_quantity = ?,
			unit_cost = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, m.Name, m.Unit, m.PurchaseMode, m.PackagePrice, m.PackageQuantity, m.UnitCost, id)
	if err != nil {
		http.Error(w, "failed to update material", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to update material", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/materials?success="+url.QueryEscape("Material atualizado com sucesso"), http.StatusSeeOther)
}

// handleMaterialDelete removes the material from the catalog. Products that
// hold snapshots of it are intentionally left untouched.
func (s *server) handleMaterialDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.db.Exec(`DELETE FROM materials WHERE id = ?`, id); err != nil {
		http.Error(w, "failed to delete material", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/materials?success="+url.QueryEscape("Material removido"), http.StatusSeeOther)
}

// parseMaterialForm validates the material form and resolves the derived unit
// cost before anything is written.
func parseMaterialForm(r *http.Request) (catalog.Material, error) {
	m := catalog.Material{
		Name:         strings.TrimSpace(r.FormValue("nome")),
		Unit:         catalog.Unit(r.FormValue("unidade")),
		PurchaseMode: catalog.PurchaseMode(r.FormValue("tipo_compra")),
	}

	if m.Name == "" {
		return m, fmt.Errorf("nome é obrigatório")
	}
	if !m.Unit.Valid() {
		return m, fmt.Errorf("unidade deve ser uma de: folha, metro, un, ml")
	}
	if !m.PurchaseMode.Valid() {
		return m, fmt.Errorf("tipo_compra deve ser pacote ou unitario")
	}

	var err error
	var directCost float64
	switch m.PurchaseMode {
	case catalog.PurchasePackage:
		if m.PackagePrice, err = parsePositiveFloat(r.FormValue("preco_pacote"), "preco_pacote"); err != nil {
			return m, err
		}
		if m.PackageQuantity, err = parsePositiveFloat(r.FormValue("qtd_pacote"), "qtd_pacote"); err != nil {
			return m, err
		}
	case catalog.PurchaseUnit:
		if directCost, err = parseNonNegativeFloat(r.FormValue("custo_unitario"), "custo_unitario"); err != nil {
			return m, err
		}
	}

	if m.UnitCost, err = pricing.UnitCost(m.PurchaseMode, m.PackagePrice, m.PackageQuantity, directCost); err != nil {
		return m, err
	}

	return m, nil
}

func (s *server) listMaterials() ([]catalog.Material, error) {
	rows, err := s.db.Query(`
		SELECT id, name, unit, purchase_mode, package_price, package_quantity, unit_cost, created_at, updated_at
		FROM materials
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := make([]catalog.Material, 0)
	for rows.Next() {
		var m catalog.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit, &m.PurchaseMode, &m.PackagePrice, &m.PackageQuantity, &m.UnitCost, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}

	return materials, nil
}

// getMaterial returns nil without error when the id no longer exists, so
// callers can treat dangling references as a no-op.
func (s *server) getMaterial(id string) (*catalog.Material, error) {
	var m catalog.Material
	err := s.db.QueryRow(`
		SELECT id, name, unit, purchase_mode, package_price, package_quantity, unit_cost, created_at, updated_at
		FROM materials
		WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.Unit, &m.PurchaseMode, &m.PackagePrice, &m.PackageQuantity, &m.UnitCost, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query material: %w", err)
	}
	return &m, nil
}
