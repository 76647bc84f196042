// Package seed populates a fresh database with the ateliê defaults: the
// labor and studio singletons and a starter set of materials.
package seed

import (
	"database/sql"
	"fmt"

	"github.com/Aneli0/atelie.works/internal/catalog"
	"github.com/Aneli0/atelie.works/internal/pricing"
)

const defaultStudioNotes = "Orçamento válido por 15 dias. Início da produção após confirmação de pagamento."

// Default labor parameters for a new database.
const (
	defaultSalary        = 2000.0
	defaultDaysPerMonth  = 22.0
	defaultHoursPerDay   = 8.0
	defaultPrintingCost  = 0.5
	defaultMarginPercent = 60.0
)

type defaultMaterial struct {
	name            string
	unit            catalog.Unit
	mode            catalog.PurchaseMode
	packagePrice    float64
	packageQuantity float64
	unitCost        float64
}

var defaultMaterials = []defaultMaterial{
	{name: "Papel Offset", unit: catalog.UnitSheet, mode: catalog.PurchasePackage, packagePrice: 220, packageQuantity: 1000},
	{name: "Papel Fotográfico", unit: catalog.UnitSheet, mode: catalog.PurchasePackage, packagePrice: 30, packageQuantity: 100},
	{name: "Cola Pano", unit: catalog.UnitMilliliter, mode: catalog.PurchasePackage, packagePrice: 14, packageQuantity: 100},
	{name: "Fita de Cetim", unit: catalog.UnitMeter, mode: catalog.PurchasePackage, packagePrice: 10, packageQuantity: 10},
	{name: "Chaton/Pedrarias", unit: catalog.UnitPiece, mode: catalog.PurchaseUnit, unitCost: 0.1},
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureLaborSettings(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureStudioSettings(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureMaterials(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureLaborSettings(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM labor_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check labor settings existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO labor_settings (
			id,
			desired_salary,
			days_per_month,
			hours_per_day,
			cost_per_minute,
			printing_cost_per_sheet,
			default_margin
		)
		VALUES (1, ?, ?, ?, ?, ?, ?)
	`,
		defaultSalary,
		defaultDaysPerMonth,
		defaultHoursPerDay,
		pricing.CostPerMinute(defaultSalary, defaultDaysPerMonth, defaultHoursPerDay),
		defaultPrintingCost,
		defaultMarginPercent,
	); err != nil {
		return fmt.Errorf("insert labor settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureStudioSettings(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM studio_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check studio settings existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO studio_settings (id, name, whatsapp, pix_type, pix_key, notes)
		VALUES (1, '', '', 'CPF', '', ?)
	`, defaultStudioNotes); err != nil {
		return fmt.Errorf("insert studio settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureMaterials(tx *sql.Tx, stats *Stats) error {
	for _, m := range defaultMaterials {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM materials WHERE name = ? LIMIT 1)`, m.name).Scan(&exists); err != nil {
			return fmt.Errorf("check material %q existence: %w", m.name, err)
		}
		if exists {
			continue
		}

		unitCost, err := pricing.UnitCost(m.mode, m.packagePrice, m.packageQuantity, m.unitCost)
		if err != nil {
			return fmt.Errorf("resolve unit cost for %q: %w", m.name, err)
		}

		if _, err := tx.Exec(`
			INSERT INTO materials (id, name, unit, purchase_mode, package_price, package_quantity, unit_cost)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, catalog.NewID(), m.name, m.unit, m.mode, m.packagePrice, m.packageQuantity, unitCost); err != nil {
			return fmt.Errorf("insert material %q: %w", m.name, err)
		}
		stats.Inserts++
	}
	return nil
}
