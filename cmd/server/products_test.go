package main

import (
	"math"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Aneli0/atelie.works/internal/catalog"
	"github.com/Aneli0/atelie.works/internal/wizard"
)

func nearlyEqualFloat(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func onlyProduct(t *testing.T, srv *server) catalog.Product {
	t.Helper()

	products, err := srv.listProducts(false)
	if err != nil {
		t.Fatalf("listProducts returned error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected exactly 1 product, got %d", len(products))
	}
	return products[0]
}

func TestProductNewStartsDraftWithDefaults(t *testing.T) {
	srv := newTestServer(t)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/new", url.Values{}))

	p := onlyProduct(t, srv)
	if p.Confirmed {
		t.Fatal("new draft must not be confirmed")
	}
	if p.Step != string(wizard.First()) {
		t.Fatalf("expected draft at step %s, got %s", wizard.First(), p.Step)
	}
	if p.AssemblyMinutes != 5 || p.PrintingSheets != 1 {
		t.Fatalf("unexpected draft cost defaults: %+v", p)
	}
	if p.MarginPercent != 60 {
		t.Fatalf("expected seeded default margin 60, got %v", p.MarginPercent)
	}
}

func TestProductConfirmComputesFromCurrentLabor(t *testing.T) {
	srv := newTestServer(t)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/new", url.Values{}))
	p := onlyProduct(t, srv)

	// Jump the draft to the final step with a name so it may be confirmed.
	if _, err := srv.db.Exec(`UPDATE products SET name = 'Caixinha Teste', step = 'preco' WHERE id = ?`, p.ID); err != nil {
		t.Fatalf("prepare draft: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/"+p.ID+"/confirm", url.Values{"margem": {"60"}}))

	got := onlyProduct(t, srv)
	if !got.Confirmed {
		t.Fatal("expected product to be confirmed")
	}

	// Seeded labor: 0.1894/min and 0.50/sheet; draft defaults 5 min, 1 sheet.
	if !nearlyEqualFloat(got.CostLabor, 5*0.1894) {
		t.Fatalf("expected labor cost %v, got %v", 5*0.1894, got.CostLabor)
	}
	if !nearlyEqualFloat(got.CostPrinting, 0.5) {
		t.Fatalf("expected printing cost 0.5, got %v", got.CostPrinting)
	}
	wantTotal := 5*0.1894 + 0.5
	if !nearlyEqualFloat(got.CostTotal, wantTotal) {
		t.Fatalf("expected total cost %v, got %v", wantTotal, got.CostTotal)
	}
	if !nearlyEqualFloat(got.SalePrice, wantTotal*1.6) {
		t.Fatalf("expected sale price %v, got %v", wantTotal*1.6, got.SalePrice)
	}
}

func TestParseMarginPercentAllowsMarkupAboveOneHundred(t *testing.T) {
	got, err := parseMarginPercent("150", "margem")
	if err != nil {
		t.Fatalf("expected 150%% margin to be accepted, got error: %v", err)
	}
	if got != 150 {
		t.Fatalf("expected margin 150, got %v", got)
	}

	if _, err := parseMarginPercent("250", "margem"); err == nil {
		t.Fatal("expected margin above 200 to be rejected")
	}
	if _, err := parseMarginPercent("-1", "margem"); err == nil {
		t.Fatal("expected negative margin to be rejected")
	}
}

func TestProductConfirmAcceptsMarginAboveOneHundred(t *testing.T) {
	srv := newTestServer(t)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/new", url.Values{}))
	p := onlyProduct(t, srv)

	if _, err := srv.db.Exec(`UPDATE products SET name = 'Caixinha Luxo', step = 'preco' WHERE id = ?`, p.ID); err != nil {
		t.Fatalf("prepare draft: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/"+p.ID+"/confirm", url.Values{"margem": {"150"}}))

	got := onlyProduct(t, srv)
	if !got.Confirmed {
		t.Fatal("expected product with 150% margin to be confirmed")
	}
	if got.MarginPercent != 150 {
		t.Fatalf("expected margin 150, got %v", got.MarginPercent)
	}
	if !nearlyEqualFloat(got.SalePrice, got.CostTotal*2.5) {
		t.Fatalf("expected sale price %v at 150%% margin, got %v", got.CostTotal*2.5, got.SalePrice)
	}
}

func TestProductMaterialSnapshotSurvivesMaterialEdit(t *testing.T) {
	srv := newTestServer(t)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/new", url.Values{}))
	p := onlyProduct(t, srv)

	materials, err := srv.listMaterials()
	if err != nil {
		t.Fatalf("listMaterials returned error: %v", err)
	}
	m := materials[0]

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/"+p.ID+"/materials", url.Values{"material_id": {m.ID}}))

	// Edit the live material after the snapshot was taken.
	if _, err := srv.db.Exec(`UPDATE materials SET unit_cost = unit_cost * 10 WHERE id = ?`, m.ID); err != nil {
		t.Fatalf("edit material: %v", err)
	}

	got, err := srv.getProduct(p.ID)
	if err != nil {
		t.Fatalf("getProduct returned error: %v", err)
	}
	if len(got.Materials) != 1 {
		t.Fatalf("expected 1 product material, got %d", len(got.Materials))
	}
	if !nearlyEqualFloat(got.Materials[0].UnitCostSnapshot, m.UnitCost) {
		t.Fatalf("snapshot changed after material edit: want %v, got %v", m.UnitCost, got.Materials[0].UnitCostSnapshot)
	}

	// Confirming still uses the frozen snapshot, not the live material.
	if _, err := srv.db.Exec(`UPDATE products SET name = 'Teste', step = 'preco' WHERE id = ?`, p.ID); err != nil {
		t.Fatalf("prepare draft: %v", err)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/"+p.ID+"/confirm", url.Values{}))

	confirmed, err := srv.getProduct(p.ID)
	if err != nil {
		t.Fatalf("getProduct returned error: %v", err)
	}
	if !nearlyEqualFloat(confirmed.CostMaterials, m.UnitCost) {
		t.Fatalf("materials cost should come from snapshot %v, got %v", m.UnitCost, confirmed.CostMaterials)
	}
}

func TestProductMaterialAddMissingMaterialIsNoOp(t *testing.T) {
	srv := newTestServer(t)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/new", url.Values{}))
	p := onlyProduct(t, srv)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/"+p.ID+"/materials", url.Values{"material_id": {"gone"}}))

	got, err := srv.getProduct(p.ID)
	if err != nil {
		t.Fatalf("getProduct returned error: %v", err)
	}
	if len(got.Materials) != 0 {
		t.Fatalf("expected no materials, got %d", len(got.Materials))
	}
}

func TestProductLineSelectOverwritesObservations(t *testing.T) {
	srv := newTestServer(t)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/new", url.Values{}))
	p := onlyProduct(t, srv)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/"+p.ID+"/line", url.Values{
		"linha": {"LUXO"},
		"nome":  {"Caixinha Festa"},
	}))

	got, err := srv.getProduct(p.ID)
	if err != nil {
		t.Fatalf("getProduct returned error: %v", err)
	}
	if got.Line != catalog.LineLuxury {
		t.Fatalf("expected line LUXO, got %s", got.Line)
	}
	if got.Name != "Caixinha Festa" {
		t.Fatalf("expected typed name to be kept, got %q", got.Name)
	}
	if got.Observations != catalog.AutoDescription(got.Category, catalog.LineLuxury) {
		t.Fatalf("observations not overwritten by line selection: %q", got.Observations)
	}
}

func TestListProductsConfirmedOnly(t *testing.T) {
	srv := newTestServer(t)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(t, "/products/new", url.Values{}))

	confirmed, err := srv.listProducts(true)
	if err != nil {
		t.Fatalf("listProducts returned error: %v", err)
	}
	if len(confirmed) != 0 {
		t.Fatalf("draft must not appear in the confirmed catalog, got %d", len(confirmed))
	}
}
