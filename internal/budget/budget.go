// Package budget implements the quote aggregation rules: items enter a budget
// as immutable price snapshots of catalog products, and the grand total is
// always recomputed from the current line totals.
package budget

import (
	"fmt"

	"github.com/Aneli0/atelie.works/internal/catalog"
)

// AddItem snapshots the product into the budget at quantity 1 and reports
// whether an item was added. A missing or unconfirmed product is a no-op:
// the caller is expected to refresh its view of the catalog, not to fail.
func AddItem(b *catalog.Budget, p *catalog.Product) bool {
	if p == nil || !p.Confirmed {
		return false
	}
	b.Items = append(b.Items, catalog.NewBudgetItem(*p))
	Recalculate(b)
	return true
}

// UpdateQuantity sets the quantity of the line at idx and recomputes its
// total from the price snapshot. Quantities must not be negative. An index
// outside the item list is a no-op.
func UpdateQuantity(b *catalog.Budget, idx int, qty float64) error {
	if qty < 0 {
		return fmt.Errorf("quantidade deve ser maior ou igual a 0")
	}
	if idx < 0 || idx >= len(b.Items) {
		return nil
	}
	b.Items[idx].Quantity = qty
	b.Items[idx].LineTotal = b.Items[idx].UnitPriceSnapshot * qty
	Recalculate(b)
	return nil
}

// RemoveItem drops the line at idx; an index outside the list is a no-op.
func RemoveItem(b *catalog.Budget, idx int) {
	if idx < 0 || idx >= len(b.Items) {
		return
	}
	b.Items = append(b.Items[:idx], b.Items[idx+1:]...)
	Recalculate(b)
}

// Recalculate is the single entry point that rewrites the grand total from
// the current line totals. Derived fields are outputs only; nothing else may
// write GrandTotal.
func Recalculate(b *catalog.Budget) {
	var total float64
	for _, item := range b.Items {
		total += item.LineTotal
	}
	b.GrandTotal = total
}

// ValidateSave checks the rules for persisting a budget: a client name and at
// least one item. It runs before any state change.
func ValidateSave(b catalog.Budget) error {
	if b.ClientName == "" {
		return fmt.Errorf("nome_cliente é obrigatório")
	}
	if len(b.Items) == 0 {
		return fmt.Errorf("orçamento precisa de pelo menos um item")
	}
	return nil
}
