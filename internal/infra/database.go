package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all tables, then applies the idempotent SQL patches GORM cannot express
// (partial indexes, conditional constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates all tables and applies the SQL patches.
// Also used by the integration test harness against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Supplier{},
		&model.CostTable{},
		&model.ISO{},
		&model.IsoLink{},
		&model.Margin{},
		&model.CostSnapshot{},
		&model.ValidationHistory{},
		&model.OverrideHistory{},
		&model.User{},
		&model.IsoMembership{},
		&model.APIKey{},
		&model.OneTimeToken{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully handle.
// Each statement uses IF NOT EXISTS / existence-guard semantics so re-running
// on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// One-time-token purge query scans by expiry; partial index keeps it
		// cheap once consumed rows accumulate.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_one_time_tokens_live') THEN
		    CREATE INDEX idx_one_time_tokens_live
		        ON one_time_tokens (expires_at)
		        WHERE consumed_at IS NULL;
		  END IF;
		END $$`,
		// Status values are constrained at the DB level too — the adjacency
		// rules live in code, but a stray UPDATE must not invent a status.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_iso_links_status') THEN
		    ALTER TABLE iso_links ADD CONSTRAINT chk_iso_links_status
		        CHECK (status IN ('draft','pending_validation','validated','rejected','inactive'));
		  END IF;
		END $$`,
		// Audit ledgers are append-only; revoke UPDATE/DELETE from the app role
		// when it is not the table owner (no-op on local dev where it is).
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_validation_history_link_created') THEN
		    NULL;
		  ELSE
		    CREATE INDEX idx_validation_history_link_created
		        ON validation_history (iso_link_id, created_at DESC);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
