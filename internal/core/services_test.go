package core

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/common"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	cfg := common.LoadConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file:" + filepath.Join(t.TempDir(), "intake.db")
	cfg.Redis.Addr = ""
	return cfg
}

func TestNewServices_SQLite(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := NewServices(ctx, testConfig(t), prometheus.NewRegistry(), logger)
	require.NoError(t, err)
	defer s.Close()

	sup, err := s.Suppliers.Create(ctx, "Nordlicht Papier KG", "DE999999999", "")
	require.NoError(t, err)

	text := "Nordlicht Papier KG Beleg-Nr. 2024/118 vom 12.11.2024"
	learned, err := s.Pipeline.Confirm(ctx, sup.ID, text, map[constants.FieldName]string{
		constants.InvoiceNumber: "2024/118",
	})
	require.NoError(t, err)
	assert.Equal(t, []constants.FieldName{constants.InvoiceNumber}, learned)

	res, err := s.Pipeline.Intake(ctx, strings.NewReader("PK"), "ablage.docx")
	require.NoError(t, err)
	assert.Equal(t, constants.SourceScan, res.Source)
	assert.Empty(t, res.Fields)

	require.NoError(t, s.DB.Pinger().Ping(ctx))
}

func TestNewServices_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "mysql"

	_, err := NewServices(context.Background(), cfg, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
