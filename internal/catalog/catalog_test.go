package catalog

import (
	"strings"
	"testing"
)

func TestAutoDescription_BasicSingularizesCategory(t *testing.T) {
	boxes := AutoDescription(CategoryBoxes, LineBasic)
	if !strings.HasPrefix(boxes, "Caixinha ") {
		t.Fatalf("expected singular Caixinha prefix, got %q", boxes)
	}

	favors := AutoDescription(CategoryFavors, LineBasic)
	if !strings.HasPrefix(favors, "Lembrancinha ") {
		t.Fatalf("expected singular Lembrancinha prefix, got %q", favors)
	}
}

func TestAutoDescription_TiersAddFinishes(t *testing.T) {
	classic := AutoDescription(CategoryBoxes, LineClassic)
	if !strings.Contains(classic, "Laço e apliques 3D") {
		t.Fatalf("classic description missing finishes: %q", classic)
	}

	luxury := AutoDescription(CategoryFavors, LineLuxury)
	if !strings.Contains(luxury, "pedrarias") {
		t.Fatalf("luxury description missing finishes: %q", luxury)
	}
	if !strings.HasPrefix(luxury, string(CategoryFavors)) {
		t.Fatalf("luxury description should start with the category, got %q", luxury)
	}
}

func TestAutoDescription_IsDeterministic(t *testing.T) {
	for _, c := range Categories {
		for _, l := range Lines {
			if AutoDescription(c, l) != AutoDescription(c, l) {
				t.Fatalf("description for %s/%s is not deterministic", c, l)
			}
		}
	}
}

func TestNewProductMaterial_SnapshotsAtSelectionTime(t *testing.T) {
	m := Material{ID: NewID(), Name: "Papel Offset", Unit: UnitSheet, UnitCost: 0.22}

	snap := NewProductMaterial(m)

	if snap.MaterialID != m.ID || snap.NameSnapshot != "Papel Offset" || snap.UnitCostSnapshot != 0.22 {
		t.Fatalf("snapshot did not copy the material: %+v", snap)
	}
	if snap.Quantity != 1 {
		t.Fatalf("default quantity = %v, want 1", snap.Quantity)
	}

	// Mutating the source after the copy must not touch the snapshot.
	m.Name = "Papel Fotográfico"
	m.UnitCost = 0.3
	if snap.NameSnapshot != "Papel Offset" || snap.UnitCostSnapshot != 0.22 {
		t.Fatalf("snapshot changed after source mutation: %+v", snap)
	}
}

func TestNewBudgetItem_SnapshotsCurrentSalePrice(t *testing.T) {
	p := Product{
		ID:           NewID(),
		Name:         "Caixinha Milk Ursinho",
		Line:         LineLuxury,
		Observations: "com laço",
		SalePrice:    3.024,
	}

	item := NewBudgetItem(p)

	if item.ProductID != p.ID || item.NameSnapshot != p.Name || item.LineSnapshot != LineLuxury {
		t.Fatalf("item did not copy the product: %+v", item)
	}
	if item.UnitPriceSnapshot != 3.024 || item.Quantity != 1 || item.LineTotal != 3.024 {
		t.Fatalf("unexpected price snapshot: %+v", item)
	}

	p.SalePrice = 99
	if item.UnitPriceSnapshot != 3.024 {
		t.Fatalf("price snapshot changed after source mutation: %+v", item)
	}
}

func TestClosedSets(t *testing.T) {
	for _, u := range Units {
		if !u.Valid() {
			t.Fatalf("unit %q should be valid", u)
		}
	}
	if Unit("kg").Valid() {
		t.Fatalf("kg is not a valid unit")
	}
	if PurchaseMode("atacado").Valid() {
		t.Fatalf("atacado is not a valid purchase mode")
	}
	if Line("PREMIUM").Valid() {
		t.Fatalf("PREMIUM is not a valid line")
	}
	if Category("Convites").Valid() {
		t.Fatalf("Convites is not a valid category")
	}
}

func TestFormatBRL(t *testing.T) {
	if got := FormatBRL(3.024); got != "R$ 3.02" {
		t.Fatalf("FormatBRL(3.024) = %q", got)
	}
	if got := FormatBRL(35.5); got != "R$ 35.50" {
		t.Fatalf("FormatBRL(35.5) = %q", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := FormatQuantity(2); got != "2" {
		t.Fatalf("FormatQuantity(2) = %q", got)
	}
	if got := FormatQuantity(2.5); got != "2.5" {
		t.Fatalf("FormatQuantity(2.5) = %q", got)
	}
}
