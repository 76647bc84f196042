package seed

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/Aneli0/atelie.works/internal/db"
	"github.com/Aneli0/atelie.works/internal/migrations"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	for i := 0; i < 10; i++ {
		stats, err := Run(database)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 7 {
				t.Fatalf("expected 7 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM labor_settings WHERE id = 1`, nil, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM studio_settings WHERE id = 1`, nil, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM materials`, nil, 5)
	assertCount(t, database, `SELECT COUNT(*) FROM materials WHERE name = ?`, "Papel Offset", 1)

	var costPerMinute float64
	if err := database.QueryRow(`SELECT cost_per_minute FROM labor_settings WHERE id = 1`).Scan(&costPerMinute); err != nil {
		t.Fatalf("query cost per minute: %v", err)
	}
	if math.Abs(costPerMinute-0.1894) > 1e-9 {
		t.Fatalf("seeded cost per minute = %v, want 0.1894", costPerMinute)
	}

	var unitCost float64
	if err := database.QueryRow(`SELECT unit_cost FROM materials WHERE name = ?`, "Papel Offset").Scan(&unitCost); err != nil {
		t.Fatalf("query unit cost: %v", err)
	}
	if math.Abs(unitCost-0.22) > 1e-9 {
		t.Fatalf("seeded unit cost = %v, want 0.22", unitCost)
	}
}

func assertCount(t *testing.T, database *sql.DB, query string, arg any, expected int) {
	t.Helper()

	var count int
	var err error
	if arg == nil {
		err = database.QueryRow(query).Scan(&count)
	} else {
		err = database.QueryRow(query, arg).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
