package infra

import (
	"fmt"

	"github.com/DataGusIT/EstacaoDoces/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection, runs AutoMigrate for all models,
// then applies the idempotent SQL patches GORM cannot express — the partial
// unique index that enforces the single-open-till rule and the ticket number
// sequence.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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

	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Customer{},
		&model.Till{},
		&model.CashMovement{},
		&model.Sale{},
		&model.SaleLineItem{},
		&model.StockMovement{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle.
// Each statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one row in caixas may carry status 'aberto'. Concurrent
		// opens race past the service pre-check; this index is the backstop.
		{"partial unique index on open till", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'ux_caixas_aberto') THEN
    CREATE UNIQUE INDEX ux_caixas_aberto ON caixas (status) WHERE status = 'aberto';
  END IF;
END $$`},
		// Gap-free-ish ticket numbering for sales; nextval is taken inside
		// the register-sale transaction.
		{"ticket number sequence", `
CREATE SEQUENCE IF NOT EXISTS vendas_numero_ticket_seq START 1`},
		// Movement range queries filter by till and time.
		{"movement range index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimentos_caixa_range') THEN
    CREATE INDEX idx_movimentos_caixa_range ON movimentos_caixa (caixa_id, data_hora DESC);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
