// Package catalog defines the entities managed by the ateliê: materials,
// products and budgets, plus the closed sets that classify them.
//
// Cross-entity data always flows by value copy: a product owns cost snapshots
// of the materials selected into it, and a budget owns price snapshots of the
// products quoted in it. The source record is never referenced again after the
// copy, so editing or deleting a material/product leaves existing snapshots
// untouched.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Unit is the measurement unit a material is purchased and consumed in.
type Unit string

const (
	UnitSheet      Unit = "folha"
	UnitMeter      Unit = "metro"
	UnitPiece      Unit = "un"
	UnitMilliliter Unit = "ml"
)

// Units lists every valid measurement unit.
var Units = []Unit{UnitSheet, UnitMeter, UnitPiece, UnitMilliliter}

func (u Unit) Valid() bool {
	for _, v := range Units {
		if u == v {
			return true
		}
	}
	return false
}

// PurchaseMode says whether a material is bought as a package or per unit.
type PurchaseMode string

const (
	PurchasePackage PurchaseMode = "pacote"
	PurchaseUnit    PurchaseMode = "unitario"
)

func (m PurchaseMode) Valid() bool {
	return m == PurchasePackage || m == PurchaseUnit
}

// Line is the quality tier of a product. The set is closed and ordered from
// the simplest finish to the most elaborate one.
type Line string

const (
	LineBasic   Line = "BÁSICA"
	LineClassic Line = "CLÁSSICA"
	LineLuxury  Line = "LUXO"
)

// Lines lists the product lines in ascending order of finish.
var Lines = []Line{LineBasic, LineClassic, LineLuxury}

func (l Line) Valid() bool {
	for _, v := range Lines {
		if l == v {
			return true
		}
	}
	return false
}

// Category is the product family.
type Category string

const (
	CategoryBoxes  Category = "Caixinhas"
	CategoryFavors Category = "Lembrancinhas"
)

// Categories lists every valid product category.
var Categories = []Category{CategoryBoxes, CategoryFavors}

func (c Category) Valid() bool {
	return c == CategoryBoxes || c == CategoryFavors
}

// Material is a purchasable input of the ateliê.
//
// UnitCost is derived: in package mode it equals PackagePrice/PackageQuantity
// and is recomputed on every edit; in unit mode it is the informed cost.
type Material struct {
	ID              string
	Name            string
	Unit            Unit
	PurchaseMode    PurchaseMode
	PackagePrice    float64
	PackageQuantity float64
	UnitCost        float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProductMaterial is the snapshot of a material selected into a product.
// Name and unit cost are copied once, at selection time.
type ProductMaterial struct {
	MaterialID       string  `json:"materialId"`
	NameSnapshot     string  `json:"nameSnapshot"`
	UnitCostSnapshot float64 `json:"unitCostSnapshot"`
	Quantity         float64 `json:"quantity"`
}

// NewProductMaterial snapshots the material at selection time with quantity 1.
func NewProductMaterial(m Material) ProductMaterial {
	return ProductMaterial{
		MaterialID:       m.ID,
		NameSnapshot:     m.Name,
		UnitCostSnapshot: m.UnitCost,
		Quantity:         1,
	}
}

// Product is a catalog item built through the product wizard.
//
// The Cost*, SalePrice and NetProfit fields are derived figures, recomputed
// as a whole on confirmation and never hand-entered. Step and Confirmed track
// the wizard: only confirmed products appear in the catalog and in budgets.
type Product struct {
	ID              string
	Category        Category
	Name            string
	Line            Line
	Observations    string
	AssemblyMinutes float64
	PrintingSheets  float64
	Materials       []ProductMaterial
	MarginPercent   float64
	CostMaterials   float64
	CostLabor       float64
	CostPrinting    float64
	CostTotal       float64
	SalePrice       float64
	NetProfit       float64
	Step            string
	Confirmed       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BudgetItem is the snapshot of a product quoted in a budget.
type BudgetItem struct {
	ProductID           string  `json:"productId"`
	NameSnapshot        string  `json:"nameSnapshot"`
	LineSnapshot        Line    `json:"lineSnapshot"`
	DescriptionSnapshot string  `json:"descriptionSnapshot"`
	UnitPriceSnapshot   float64 `json:"unitPriceSnapshot"`
	Quantity            float64 `json:"quantity"`
	LineTotal           float64 `json:"totalItem"`
}

// NewBudgetItem snapshots the product's current sale price at quantity 1.
func NewBudgetItem(p Product) BudgetItem {
	return BudgetItem{
		ProductID:           p.ID,
		NameSnapshot:        p.Name,
		LineSnapshot:        p.Line,
		DescriptionSnapshot: p.Observations,
		UnitPriceSnapshot:   p.SalePrice,
		Quantity:            1,
		LineTotal:           p.SalePrice,
	}
}

// Budget is a client quote. GrandTotal always equals the sum of the current
// item line totals; it is recomputed after every item mutation.
type Budget struct {
	ID          string
	ClientName  string
	ClientPhone string
	Items       []BudgetItem
	GrandTotal  float64
	Draft       bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StudioSettings holds the ateliê branding used on budgets (singleton).
type StudioSettings struct {
	Name     string
	Whatsapp string
	PixType  string
	PixKey   string
	Notes    string
	Logo     string
}

// LaborSettings holds the studio-wide time and margin parameters (singleton).
// CostPerMinute is derived from the first three fields and never edited
// directly.
type LaborSettings struct {
	DesiredSalary        float64
	DaysPerMonth         float64
	HoursPerDay          float64
	CostPerMinute        float64
	PrintingCostPerSheet float64
	DefaultMargin        float64
}

// NewID returns a fresh identifier for a top-level entity.
func NewID() string {
	return uuid.NewString()
}

// AutoDescription generates the default observations text for a product from
// its line and category. Each explicit line selection overwrites the product
// observations with this text; the user may edit it afterwards.
func AutoDescription(c Category, l Line) string {
	switch l {
	case LineBasic:
		singular := "Lembrancinha"
		if c == CategoryBoxes {
			singular = "Caixinha"
		}
		return singular + " Personalizada com impressão alta qualidade, corte e montagem completa."
	case LineClassic:
		return string(c) + " Personalizada com impressão alta qualidade. Acompanha: Laço e apliques 3D."
	default:
		return string(c) + " Personalizada com impressão alta qualidade e acabamentos Luxo. Acompanha: Laço, apliques 3D, pedrarias e/ou aviamentos."
	}
}
