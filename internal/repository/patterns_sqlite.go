package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

type sqlPatternStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLPatternStore returns a PatternStore backed by an SQLite database.
func NewSQLPatternStore(db *sql.DB, logger *slog.Logger) PatternStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlPatternStore{db: db, logger: logger}
}

func (s *sqlPatternStore) Get(ctx context.Context, supplierID uuid.UUID, field constants.FieldName) (*entity.SupplierPattern, error) {
	const q = `SELECT supplier_id, field_name, pattern, updated_at
		FROM supplier_patterns WHERE supplier_id = $1 AND field_name = $2`

	p, err := scanSQLPattern(s.db.QueryRowContext(ctx, q, supplierID.String(), string(field)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to get pattern", "supplier_id", supplierID, "field", field, "error", err)
		return nil, common.DatabaseError("get pattern", err)
	}
	return p, nil
}

func (s *sqlPatternStore) GetAll(ctx context.Context, supplierID uuid.UUID) ([]*entity.SupplierPattern, error) {
	const q = `SELECT supplier_id, field_name, pattern, updated_at
		FROM supplier_patterns WHERE supplier_id = $1 ORDER BY field_name`

	rows, err := s.db.QueryContext(ctx, q, supplierID.String())
	if err != nil {
		s.logger.Error("failed to list patterns", "supplier_id", supplierID, "error", err)
		return nil, common.DatabaseError("list patterns", err)
	}
	defer rows.Close()

	var out []*entity.SupplierPattern
	for rows.Next() {
		p, err := scanSQLPattern(rows)
		if err != nil {
			return nil, common.DatabaseError("scan pattern", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.DatabaseError("list patterns", err)
	}
	return out, nil
}

func (s *sqlPatternStore) Upsert(ctx context.Context, supplierID uuid.UUID, field constants.FieldName, pattern string) error {
	const q = `INSERT INTO supplier_patterns (supplier_id, field_name, pattern, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (supplier_id, field_name) DO UPDATE SET
			pattern = excluded.pattern,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, q, supplierID.String(), string(field), pattern, time.Now().UTC().UnixMilli())
	if err != nil {
		s.logger.Error("failed to upsert pattern", "supplier_id", supplierID, "field", field, "error", err)
		return common.DatabaseError("upsert pattern", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLPattern(row rowScanner) (*entity.SupplierPattern, error) {
	var (
		id, field, pattern string
		updated            int64
	)
	if err := row.Scan(&id, &field, &pattern, &updated); err != nil {
		return nil, err
	}
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return &entity.SupplierPattern{
		SupplierID: sid,
		FieldName:  constants.FieldName(field),
		Pattern:    pattern,
		UpdatedAt:  time.UnixMilli(updated).UTC(),
	}, nil
}
