package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
	"github.com/kuesten-code/Werkbank-sub000/internal/normalize"
)

const sqlSupplierColumns = `id, name, tax_id, iban, created_at`

type sqlSupplierDirectory struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLSupplierDirectory returns a SupplierDirectory backed by an SQLite database.
func NewSQLSupplierDirectory(db *sql.DB, logger *slog.Logger) SupplierDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlSupplierDirectory{db: db, logger: logger}
}

func (d *sqlSupplierDirectory) findOne(ctx context.Context, op, where, arg string) (*entity.Supplier, error) {
	if arg == "" {
		return nil, nil
	}
	q := `SELECT ` + sqlSupplierColumns + ` FROM suppliers WHERE ` + where + ` ORDER BY name, id LIMIT 1`
	s, err := scanSQLSupplier(d.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		d.logger.Error("supplier lookup failed", "op", op, "error", err)
		return nil, common.DatabaseError(op, err)
	}
	return s, nil
}

func (d *sqlSupplierDirectory) FindByTaxID(ctx context.Context, taxID string) (*entity.Supplier, error) {
	return d.findOne(ctx, "find supplier by tax id", `tax_id = $1`, normalize.Identifier(taxID))
}

func (d *sqlSupplierDirectory) FindByIban(ctx context.Context, iban string) (*entity.Supplier, error) {
	return d.findOne(ctx, "find supplier by iban", `iban = $1`, normalize.Identifier(iban))
}

func (d *sqlSupplierDirectory) FindByName(ctx context.Context, name string) (*entity.Supplier, error) {
	return d.findOne(ctx, "find supplier by name", `name = $1`, strings.TrimSpace(name))
}

func (d *sqlSupplierDirectory) All(ctx context.Context) ([]*entity.Supplier, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+sqlSupplierColumns+` FROM suppliers ORDER BY name, id`)
	if err != nil {
		d.logger.Error("failed to list suppliers", "error", err)
		return nil, common.DatabaseError("list suppliers", err)
	}
	defer rows.Close()

	var out []*entity.Supplier
	for rows.Next() {
		s, err := scanSQLSupplier(rows)
		if err != nil {
			return nil, common.DatabaseError("scan supplier", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.DatabaseError("list suppliers", err)
	}
	return out, nil
}

func (d *sqlSupplierDirectory) Create(ctx context.Context, name, taxID, iban string) (*entity.Supplier, error) {
	s, err := newSupplier(name, taxID, iban)
	if err != nil {
		return nil, err
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO suppliers (`+sqlSupplierColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		s.ID.String(), s.Name, s.TaxID, s.Iban, s.CreatedAt.UnixMilli())
	if err != nil {
		d.logger.Error("failed to create supplier", "name", s.Name, "error", err)
		return nil, common.DatabaseError("create supplier", err)
	}
	s.CreatedAt = time.UnixMilli(s.CreatedAt.UnixMilli()).UTC()
	return s, nil
}

func scanSQLSupplier(row rowScanner) (*entity.Supplier, error) {
	var (
		id      string
		s       entity.Supplier
		created int64
	)
	if err := row.Scan(&id, &s.Name, &s.TaxID, &s.Iban, &created); err != nil {
		return nil, err
	}
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	s.ID = sid
	s.CreatedAt = time.UnixMilli(created).UTC()
	return &s, nil
}
