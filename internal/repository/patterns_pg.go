package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

type pgPatternStore struct {
	db     pgxQuerier
	logger *slog.Logger
}

// NewPgPatternStore returns a PatternStore backed by Postgres.
func NewPgPatternStore(db pgxQuerier, logger *slog.Logger) PatternStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &pgPatternStore{db: db, logger: logger}
}

func (s *pgPatternStore) Get(ctx context.Context, supplierID uuid.UUID, field constants.FieldName) (*entity.SupplierPattern, error) {
	query := `
		SELECT supplier_id, field_name, pattern, updated_at
		FROM supplier_patterns
		WHERE supplier_id = $1 AND field_name = $2
	`

	var p entity.SupplierPattern
	var name string
	err := s.db.QueryRow(ctx, query, supplierID, string(field)).
		Scan(&p.SupplierID, &name, &p.Pattern, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to get pattern", "supplier_id", supplierID, "field", field, "error", err)
		return nil, common.DatabaseError("get pattern", err)
	}
	p.FieldName = constants.FieldName(name)
	return &p, nil
}

func (s *pgPatternStore) GetAll(ctx context.Context, supplierID uuid.UUID) ([]*entity.SupplierPattern, error) {
	query := `
		SELECT supplier_id, field_name, pattern, updated_at
		FROM supplier_patterns
		WHERE supplier_id = $1
		ORDER BY field_name
	`

	rows, err := s.db.Query(ctx, query, supplierID)
	if err != nil {
		s.logger.Error("failed to list patterns", "supplier_id", supplierID, "error", err)
		return nil, common.DatabaseError("list patterns", err)
	}
	defer rows.Close()

	var out []*entity.SupplierPattern
	for rows.Next() {
		var p entity.SupplierPattern
		var name string
		if err := rows.Scan(&p.SupplierID, &name, &p.Pattern, &p.UpdatedAt); err != nil {
			return nil, common.DatabaseError("scan pattern", err)
		}
		p.FieldName = constants.FieldName(name)
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.DatabaseError("list patterns", err)
	}
	return out, nil
}

func (s *pgPatternStore) Upsert(ctx context.Context, supplierID uuid.UUID, field constants.FieldName, pattern string) error {
	query := `
		INSERT INTO supplier_patterns (supplier_id, field_name, pattern)
		VALUES ($1, $2, $3)
		ON CONFLICT (supplier_id, field_name) DO UPDATE SET
			pattern = EXCLUDED.pattern,
			updated_at = now()
	`

	if _, err := s.db.Exec(ctx, query, supplierID, string(field), pattern); err != nil {
		s.logger.Error("failed to upsert pattern", "supplier_id", supplierID, "field", field, "error", err)
		return common.DatabaseError("upsert pattern", err)
	}
	return nil
}
