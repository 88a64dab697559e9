package database

import (
	"log/slog"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"crmcore/internal/domain"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		slog.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	slog.Info("using SQLite", "dsn", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates or updates the schema, including the partial unique index
// that enforces one open conversion request per lead and the unique
// source-lead index on opportunities.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Country{},
		&domain.State{},
		&domain.City{},
		&domain.User{},
		&domain.Company{},
		&domain.Contact{},
		&domain.Lead{},
		&domain.LeadContact{},
		&domain.ConversionRequest{},
		&domain.Opportunity{},
		&domain.OpportunityCounter{},
	); err != nil {
		return err
	}

	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_pending_request_per_lead
		 ON conversion_requests (lead_id) WHERE decision = 'PENDING'`,
	).Error; err != nil {
		return err
	}

	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_opportunity_per_lead
		 ON opportunities (lead_id)`,
	).Error
}
