// Package pricing holds the pure calculation rules of the ateliê: how a raw
// material purchase turns into a per-unit cost, how salary and schedule turn
// into a cost per minute, and how a product composition turns into cost, sale
// price and profit.
package pricing

import (
	"fmt"
	"math"

	"github.com/Aneli0/atelie.works/internal/catalog"
)

// UnitCost resolves the per-unit cost of a material from its purchase mode.
//
// Package mode divides the package price by the package quantity; both must be
// greater than zero, and a zero quantity is rejected before the division ever
// happens. Unit mode passes the informed cost through, which must not be
// negative.
func UnitCost(mode catalog.PurchaseMode, packagePrice, packageQuantity, unitCost float64) (float64, error) {
	switch mode {
	case catalog.PurchasePackage:
		if packagePrice <= 0 {
			return 0, fmt.Errorf("preco_pacote deve ser maior que 0")
		}
		if packageQuantity <= 0 {
			return 0, fmt.Errorf("qtd_pacote deve ser maior que 0")
		}
		return packagePrice / packageQuantity, nil
	case catalog.PurchaseUnit:
		if unitCost < 0 {
			return 0, fmt.Errorf("custo_unitario deve ser maior ou igual a 0")
		}
		return unitCost, nil
	default:
		return 0, fmt.Errorf("tipo_compra deve ser %s ou %s", catalog.PurchasePackage, catalog.PurchaseUnit)
	}
}

// CostPerMinute derives the value of one minute of work from the desired
// monthly salary and the working schedule. The result is rounded to four
// decimals so it does not compound rounding drift across many products.
// An empty schedule yields zero instead of a division by zero.
func CostPerMinute(desiredSalary, daysPerMonth, hoursPerDay float64) float64 {
	totalMinutes := daysPerMonth * hoursPerDay * 60
	if totalMinutes <= 0 {
		return 0
	}
	return math.Round(desiredSalary/totalMinutes*10000) / 10000
}

// MaterialLine is one snapshot entry of a product composition.
type MaterialLine struct {
	UnitCost float64
	Quantity float64
}

// ProductInput represents the cost composition of a product draft.
type ProductInput struct {
	Materials       []MaterialLine
	AssemblyMinutes float64
	PrintingSheets  float64
	MarginPercent   float64
}

// Labor represents the studio-wide parameters shared across calculations.
type Labor struct {
	CostPerMinute        float64
	PrintingCostPerSheet float64
}

// Breakdown contains every derived figure of a product.
type Breakdown struct {
	MaterialsCost float64
	LaborCost     float64
	PrintingCost  float64
	TotalCost     float64
	SalePrice     float64
	NetProfit     float64
}

// Compose computes all derived product figures from the composition and the
// current labor settings. It is a pure function: material costs come from the
// snapshots in the input, never from the live materials catalog.
func Compose(in ProductInput, labor Labor) Breakdown {
	var materialsCost float64
	for _, m := range in.Materials {
		materialsCost += m.UnitCost * m.Quantity
	}

	laborCost := in.AssemblyMinutes * labor.CostPerMinute
	printingCost := in.PrintingSheets * labor.PrintingCostPerSheet
	totalCost := materialsCost + laborCost + printingCost
	salePrice := totalCost * (1 + in.MarginPercent/100)

	return Breakdown{
		MaterialsCost: materialsCost,
		LaborCost:     laborCost,
		PrintingCost:  printingCost,
		TotalCost:     totalCost,
		SalePrice:     salePrice,
		NetProfit:     salePrice - totalCost,
	}
}
