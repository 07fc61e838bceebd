package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
	"github.com/kuesten-code/Werkbank-sub000/internal/normalize"
)

const pgSupplierColumns = `id, name, tax_id, iban, created_at`

type pgSupplierDirectory struct {
	db     pgxQuerier
	logger *slog.Logger
}

// NewPgSupplierDirectory returns a SupplierDirectory backed by Postgres.
func NewPgSupplierDirectory(db pgxQuerier, logger *slog.Logger) SupplierDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &pgSupplierDirectory{db: db, logger: logger}
}

func (d *pgSupplierDirectory) findOne(ctx context.Context, op, where, arg string) (*entity.Supplier, error) {
	if arg == "" {
		return nil, nil
	}
	query := `SELECT ` + pgSupplierColumns + ` FROM suppliers WHERE ` + where + ` ORDER BY name, id LIMIT 1`

	var s entity.Supplier
	err := d.db.QueryRow(ctx, query, arg).Scan(&s.ID, &s.Name, &s.TaxID, &s.Iban, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		d.logger.Error("supplier lookup failed", "op", op, "error", err)
		return nil, common.DatabaseError(op, err)
	}
	return &s, nil
}

func (d *pgSupplierDirectory) FindByTaxID(ctx context.Context, taxID string) (*entity.Supplier, error) {
	return d.findOne(ctx, "find supplier by tax id", `tax_id = $1`, normalize.Identifier(taxID))
}

func (d *pgSupplierDirectory) FindByIban(ctx context.Context, iban string) (*entity.Supplier, error) {
	return d.findOne(ctx, "find supplier by iban", `iban = $1`, normalize.Identifier(iban))
}

func (d *pgSupplierDirectory) FindByName(ctx context.Context, name string) (*entity.Supplier, error) {
	return d.findOne(ctx, "find supplier by name", `name = $1`, strings.TrimSpace(name))
}

func (d *pgSupplierDirectory) All(ctx context.Context) ([]*entity.Supplier, error) {
	rows, err := d.db.Query(ctx, `SELECT `+pgSupplierColumns+` FROM suppliers ORDER BY name, id`)
	if err != nil {
		d.logger.Error("failed to list suppliers", "error", err)
		return nil, common.DatabaseError("list suppliers", err)
	}
	defer rows.Close()

	var out []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.TaxID, &s.Iban, &s.CreatedAt); err != nil {
			return nil, common.DatabaseError("scan supplier", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.DatabaseError("list suppliers", err)
	}
	return out, nil
}

func (d *pgSupplierDirectory) Create(ctx context.Context, name, taxID, iban string) (*entity.Supplier, error) {
	s, err := newSupplier(name, taxID, iban)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO suppliers (id, name, tax_id, iban)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := d.db.QueryRow(ctx, query, s.ID, s.Name, s.TaxID, s.Iban).Scan(&s.CreatedAt); err != nil {
		d.logger.Error("failed to create supplier", "name", s.Name, "error", err)
		return nil, common.DatabaseError("create supplier", err)
	}
	return s, nil
}
