package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// supplierDirectoryContract runs the behaviour every SupplierDirectory shares.
func supplierDirectoryContract(t *testing.T, dir SupplierDirectory) {
	ctx := context.Background()

	mueller, err := dir.Create(ctx, "Müller Bürobedarf GmbH", "DE 123 456 789", "de89 3704 0044 0532 0130 00")
	require.NoError(t, err)
	assert.Equal(t, "DE123456789", mueller.TaxID)
	assert.Equal(t, "DE89370400440532013000", mueller.Iban)
	_, err = dir.Create(ctx, "Abel Druck", "", "")
	require.NoError(t, err)
	_, err = dir.Create(ctx, "Zeta Logistik", "DE999999999", "")
	require.NoError(t, err)

	_, err = dir.Create(ctx, "  ", "", "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	got, err := dir.FindByTaxID(ctx, "de123456789")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mueller.ID, got.ID)

	got, err = dir.FindByIban(ctx, "DE89 3704 0044 0532 0130 00")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mueller.ID, got.ID)

	got, err = dir.FindByName(ctx, " Abel Druck ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Abel Druck", got.Name)

	got, err = dir.FindByName(ctx, "abel druck")
	require.NoError(t, err)
	assert.Nil(t, got, "name lookup is exact")

	got, err = dir.FindByTaxID(ctx, "DE000")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = dir.FindByTaxID(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = dir.FindByIban(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = dir.FindByName(ctx, "Unbekannt")
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := dir.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Abel Druck", all[0].Name)
	assert.Equal(t, "Müller Bürobedarf GmbH", all[1].Name)
	assert.Equal(t, "Zeta Logistik", all[2].Name)
}

func TestMemorySupplierDirectory(t *testing.T) {
	supplierDirectoryContract(t, NewMemorySupplierDirectory())
}

func TestSQLSupplierDirectory(t *testing.T) {
	_, dir := newSQLiteStores(t)
	supplierDirectoryContract(t, dir)
}

func TestMemorySupplierDirectory_SeedIsNormalizedAndOrdered(t *testing.T) {
	dir := NewMemorySupplierDirectory(
		&entity.Supplier{ID: uuid.New(), Name: "Beta", TaxID: "de 1"},
		&entity.Supplier{ID: uuid.New(), Name: "Alpha"},
	)
	all, err := dir.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "DE1", all[1].TaxID)
}

func TestPgSupplierDirectory_FindByTaxID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, tax_id, iban, created_at FROM suppliers WHERE tax_id = \$1 ORDER BY name, id LIMIT 1`).
		WithArgs("DE123456789").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "tax_id", "iban", "created_at"}).
			AddRow(id, "Müller", "DE123456789", "", now))

	got, err := NewPgSupplierDirectory(mock, discardLogger()).FindByTaxID(context.Background(), "de 123 456 789")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgSupplierDirectory_FindByNameMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`WHERE name = \$1`).
		WithArgs("Nobody").
		WillReturnError(pgx.ErrNoRows)

	got, err := NewPgSupplierDirectory(mock, discardLogger()).FindByName(context.Background(), " Nobody ")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgSupplierDirectory_All(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, tax_id, iban, created_at FROM suppliers ORDER BY name, id`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "tax_id", "iban", "created_at"}).
			AddRow(uuid.New(), "A", "", "", now).
			AddRow(uuid.New(), "B", "", "DE02120300000000202051", now))

	all, err := NewPgSupplierDirectory(mock, discardLogger()).All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgSupplierDirectory_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO suppliers`).
		WithArgs(pgxmock.AnyArg(), "Neu GmbH", "DE42", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	s, err := NewPgSupplierDirectory(mock, discardLogger()).Create(context.Background(), "Neu GmbH", "de 42", "")
	require.NoError(t, err)
	assert.Equal(t, "Neu GmbH", s.Name)
	assert.Equal(t, now, s.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Postgres(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for range schemaPostgres {
		mock.ExpectExec(`CREATE`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}
	require.NoError(t, EnsureSchema(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectPing()
	require.NoError(t, HealthCheck(context.Background(), mock, time.Second, discardLogger()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_SQLite(t *testing.T) {
	h, err := Connect(context.Background(), common.DatabaseConfig{
		Driver: DriverSQLite,
		DSN:    "file:" + t.TempDir() + "/h.db",
	}, discardLogger())
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, HealthCheck(context.Background(), h.Pinger(), time.Second, discardLogger()))
	s, err := h.Suppliers().Create(context.Background(), "Handle GmbH", "", "")
	require.NoError(t, err)
	require.NoError(t, h.Patterns().Upsert(context.Background(), s.ID, "Iban", `IBAN\s*`))
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(context.Background(), common.DatabaseConfig{Driver: "oracle"}, discardLogger())
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
