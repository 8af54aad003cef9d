package postgres

import (
	"context"
	"errors"
	"fmt"
	"listings-service/internal/contextkeys"
	"listings-service/internal/contracts"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/port"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier - часть pgxpool.Pool, нужная адаптеру
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// RecordSourceAdapter читает сырые записи из таблицы с колонкой payload (json/jsonb).
// Каждая строка - одна запись источника в исходном виде.
type RecordSourceAdapter struct {
	db    Querier
	query string
}

func NewRecordSourceAdapter(db Querier, table string) (*RecordSourceAdapter, error) {
	if db == nil {
		return nil, fmt.Errorf("database pool is nil")
	}
	ident, err := tableIdentifier(table)
	if err != nil {
		return nil, err
	}
	return &RecordSourceAdapter{
		db:    db,
		query: fmt.Sprintf("SELECT payload FROM %s ORDER BY 1", ident.Sanitize()),
	}, nil
}

// tableIdentifier разбирает "schema.table" и экранирует части
func tableIdentifier(table string) (pgx.Identifier, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, fmt.Errorf("listings table name is required")
	}
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid listings table name %q", table)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("invalid listings table name %q", table)
		}
	}
	return pgx.Identifier(parts), nil
}

func (a *RecordSourceAdapter) Name() string { return "postgres" }

func (a *RecordSourceAdapter) FetchRecords(ctx context.Context) ([]domain.RawRecord, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresRecordSource",
	})

	rows, err := a.db.Query(ctx, a.query)
	if err != nil {
		logger.Error("Failed to query listings table", err, nil)
		return nil, fmt.Errorf("failed to query listings: %w", describe(err))
	}

	payloads, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		logger.Error("Failed to read listings rows", err, nil)
		return nil, fmt.Errorf("failed to read listings rows: %w", describe(err))
	}

	records := make([]domain.RawRecord, 0, len(payloads))
	skipped := 0
	for _, p := range payloads {
		rec, err := contracts.DecodeRecord(p)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		logger.Warn("Skipped rows with non-object payload", port.Fields{"skipped": skipped})
	}
	logger.Info("Listings rows loaded", port.Fields{"records_count": len(records)})
	return records, nil
}

// describe добавляет код ошибки PostgreSQL, если он есть
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w (sqlstate %s)", err, pgErr.Code)
	}
	return err
}
