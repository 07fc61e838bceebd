package patterns

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
	"github.com/kuesten-code/Werkbank-sub000/internal/metrics"
	"github.com/kuesten-code/Werkbank-sub000/internal/repository"
)

const sampleText = "Rechnungsnummer: RE-2024-001 Datum: 05.03.2024"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPair(store repository.PatternStore) (*Learner, *Extractor) {
	cfg := Config{MatchTimeout: 2 * time.Second}
	return NewLearner(store, cfg, quietLogger(), nil), NewExtractor(store, cfg, quietLogger(), nil)
}

func TestLearnThenExtract_RoundTrip(t *testing.T) {
	store := repository.NewMemoryPatternStore()
	learner, extractor := newPair(store)
	ctx := context.Background()
	s := uuid.New()

	ok, err := learner.Learn(ctx, s, constants.InvoiceNumber, sampleText, "RE-2024-001")
	require.NoError(t, err)
	require.True(t, ok)

	p, err := store.Get(ctx, s, constants.InvoiceNumber)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, `Rechnungsnummer:\s*`, p.Pattern)

	got := extractor.Extract(ctx, &s, sampleText)
	assert.Equal(t, "RE-2024-001", got[constants.InvoiceNumber])
}

func TestLearnThenExtract_OnLaterDocument(t *testing.T) {
	store := repository.NewMemoryPatternStore()
	learner, extractor := newPair(store)
	ctx := context.Background()
	s := uuid.New()

	first := "Müller GmbH\nRechnungs-Nr.:  4711\nRechnungsdatum der Lieferung: 05.03.2024\nGesamtbetrag inkl. MwSt EUR 1.234,56"
	ok, err := learner.Learn(ctx, s, constants.AmountGross, first, "1234.56")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = learner.Learn(ctx, s, constants.InvoiceDate, first, "2024-03-05")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = learner.Learn(ctx, s, constants.InvoiceNumber, first, "4711")
	require.NoError(t, err)
	require.True(t, ok)

	second := "Müller GmbH\r\nRechnungs-Nr.: 4802\r\nRechnungsdatum der Lieferung:\t12.11.2024\r\nGesamtbetrag inkl. MwSt   EUR 99,90"
	got := extractor.Extract(ctx, &s, second)
	assert.Equal(t, map[constants.FieldName]string{
		constants.AmountGross:   "99.90",
		constants.InvoiceDate:   "2024-11-12",
		constants.InvoiceNumber: "4802",
	}, got)
}

func TestLearn_LocatesGermanRenderings(t *testing.T) {
	tests := []struct {
		name      string
		field     constants.FieldName
		text      string
		confirmed string
		pattern   string
	}{
		{"grouped amount", constants.AmountGross, "Summe brutto: 1.234,56 EUR", "1234.56", `Summe\s*brutto:\s*`},
		{"simple amount", constants.AmountNet, "Netto 1234,50", "1234.50", `Netto\s*`},
		{"date short year", constants.InvoiceDate, "Belegdatum 5.3.24 Seite 1", "2024-03-05", `Belegdatum\s*`},
		{"date iso", constants.InvoiceDate, "Datum (ISO): 2024-03-05", "2024-03-05", `Datum\s*\(ISO\):\s*`},
		{"case insensitive", constants.InvoiceNumber, "Beleg-Nr. re-77", "RE-77", `Beleg-Nr\.\s*`},
		{"context capped", constants.Iban, "Bankverbindung Sparkasse Musterstadt IBAN DE89370400440532013000", "DE89370400440532013000", `se\s*Musterstadt\s*IBAN\s*`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMemoryPatternStore()
			learner, _ := newPair(store)
			s := uuid.New()

			ok, err := learner.Learn(context.Background(), s, tt.field, tt.text, tt.confirmed)
			require.NoError(t, err)
			require.True(t, ok)
			p, err := store.Get(context.Background(), s, tt.field)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, tt.pattern, p.Pattern)
		})
	}
}

func TestLearn_NoOps(t *testing.T) {
	store := repository.NewMemoryPatternStore()
	learner, _ := newPair(store)
	ctx := context.Background()
	s := uuid.New()

	for _, tc := range []struct{ text, value string }{
		{"", "RE-1"},
		{sampleText, ""},
		{sampleText, "   "},
		{sampleText, "not-in-text"},
		{"RE-2024-001 steht vorne", "RE-2024-001"},
	} {
		ok, err := learner.Learn(ctx, s, constants.InvoiceNumber, tc.text, tc.value)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	all, err := store.GetAll(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLearn_UnknownField(t *testing.T) {
	learner, _ := newPair(repository.NewMemoryPatternStore())
	_, err := learner.Learn(context.Background(), uuid.New(), constants.FieldName("Bogus"), sampleText, "RE-2024-001")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestLearn_OverwritesPriorPattern(t *testing.T) {
	store := repository.NewMemoryPatternStore()
	learner, _ := newPair(store)
	ctx := context.Background()
	s := uuid.New()

	_, err := learner.Learn(ctx, s, constants.InvoiceNumber, "Nr. 1", "1")
	require.NoError(t, err)
	_, err = learner.Learn(ctx, s, constants.InvoiceNumber, "Beleg 2", "2")
	require.NoError(t, err)

	all, err := store.GetAll(ctx, s)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, `Beleg\s*`, all[0].Pattern)
}

type failingStore struct{ repository.PatternStore }

func (failingStore) Upsert(context.Context, uuid.UUID, constants.FieldName, string) error {
	return errors.New("disk full")
}

func (failingStore) GetAll(context.Context, uuid.UUID) ([]*entity.SupplierPattern, error) {
	return nil, errors.New("disk full")
}

func TestLearn_StoreFailure(t *testing.T) {
	learner := NewLearner(failingStore{}, Config{}, quietLogger(), nil)
	ok, err := learner.Learn(context.Background(), uuid.New(), constants.InvoiceNumber, sampleText, "RE-2024-001")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestExtract_SupplierIsolation(t *testing.T) {
	store := repository.NewMemoryPatternStore()
	learner, extractor := newPair(store)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	ok, err := learner.Learn(ctx, a, constants.InvoiceNumber, sampleText, "RE-2024-001")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "RE-2024-001", extractor.Extract(ctx, &a, sampleText)[constants.InvoiceNumber])
	assert.Empty(t, extractor.Extract(ctx, &b, sampleText))
}

func TestExtract_NoGenericFallbackForKnownSupplier(t *testing.T) {
	store := repository.NewMemoryPatternStore()
	learner, extractor := newPair(store)
	ctx := context.Background()
	s := uuid.New()

	text := sampleText + " Gesamtbetrag: 119,00 EUR"
	ok, err := learner.Learn(ctx, s, constants.InvoiceNumber, text, "RE-2024-001")
	require.NoError(t, err)
	require.True(t, ok)

	got := extractor.Extract(ctx, &s, text)
	assert.Equal(t, map[constants.FieldName]string{constants.InvoiceNumber: "RE-2024-001"}, got)

	generic := extractor.Extract(ctx, nil, text)
	assert.Equal(t, "119.00", generic[constants.AmountGross])
}

func TestExtract_Generic(t *testing.T) {
	_, extractor := newPair(repository.NewMemoryPatternStore())

	text := `Muster Bürobedarf GmbH
Rechnungsnummer: 2024/0815
Rechnungsdatum: 05.03.24
Nettobetrag: 1.000,00 €
zzgl. 19 % MwSt.
Gesamtbetrag: 1.190,00 €
IBAN DE89 3704 0044 0532 0130 00`

	got := extractor.Extract(context.Background(), nil, text)
	assert.Equal(t, map[constants.FieldName]string{
		constants.InvoiceNumber: "2024/0815",
		constants.InvoiceDate:   "2024-03-05",
		constants.AmountNet:     "1000.00",
		constants.AmountGross:   "1190.00",
		constants.TaxRate:       "19",
		constants.Iban:          "DE89370400440532013000",
	}, got)
}

func TestExtract_GenericNothingFound(t *testing.T) {
	_, extractor := newPair(repository.NewMemoryPatternStore())
	got := extractor.Extract(context.Background(), nil, "Lieferschein ohne Beträge, Subtotal unbekannt, 17% Rabatt")
	assert.Empty(t, got)
}

func TestExtract_InvalidStoredPatternIsSkipped(t *testing.T) {
	store := repository.NewMemoryPatternStore()
	ctx := context.Background()
	s := uuid.New()
	require.NoError(t, store.Upsert(ctx, s, constants.AmountGross, `Summe(\s*`))
	require.NoError(t, store.Upsert(ctx, s, constants.InvoiceNumber, `Rechnungsnummer:\s*`))

	_, extractor := newPair(store)
	got := extractor.Extract(ctx, &s, sampleText+" Summe( 12,00")
	assert.Equal(t, map[constants.FieldName]string{constants.InvoiceNumber: "RE-2024-001"}, got)
}

func TestExtract_StoreFailureYieldsNoFields(t *testing.T) {
	extractor := NewExtractor(failingStore{}, Config{}, quietLogger(), nil)
	s := uuid.New()
	got := extractor.Extract(context.Background(), &s, sampleText)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtract_TimeoutContainment(t *testing.T) {
	store := repository.NewMemoryPatternStore()
	ctx := context.Background()
	s := uuid.New()
	require.NoError(t, store.Upsert(ctx, s, constants.AmountGross, `(a+)+b\s*`))
	require.NoError(t, store.Upsert(ctx, s, constants.InvoiceNumber, `Rechnungsnummer:\s*`))

	reg := prometheus.NewRegistry()
	extractor := NewExtractor(store, Config{MatchTimeout: 50 * time.Millisecond}, quietLogger(), metrics.New(reg))
	// simulate a backtracking engine stuck on the nested quantifier
	extractor.match = func(re *regexp.Regexp, text string) []string {
		if strings.Contains(re.String(), "(a+)+") {
			time.Sleep(5 * time.Second)
		}
		return re.FindStringSubmatch(text)
	}

	text := strings.Repeat("a", 5000) + "! " + sampleText
	start := time.Now()
	got := extractor.Extract(ctx, &s, text)
	elapsed := time.Since(start)

	assert.Equal(t, map[constants.FieldName]string{constants.InvoiceNumber: "RE-2024-001"}, got)
	assert.Less(t, elapsed, time.Second)

	n, err := testutil.GatherAndCount(reg, "intake_match_timeouts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExtract_PathologicalInputStaysLinear(t *testing.T) {
	store := repository.NewMemoryPatternStore()
	ctx := context.Background()
	s := uuid.New()
	require.NoError(t, store.Upsert(ctx, s, constants.AmountGross, `(a+)+b\s*`))

	_, extractor := newPair(store)
	text := strings.Repeat("a", 100000) + "!"

	start := time.Now()
	got := extractor.Extract(ctx, &s, text)
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestBuildPattern(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Rechnungsnummer: ", `Rechnungsnummer:\s*`},
		{"Summe (brutto) EUR", `Summe\s*\(brutto\)\s*EUR\s*`},
		{"Re.-Nr.", `Re\.-Nr\.\s*`},
		{"Preis $ [x]", `Preis\s*\$\s*\[x\]\s*`},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := BuildPattern(tt.in)
			assert.Equal(t, tt.want, got)
			if got != "" {
				_, err := regexp.Compile(got)
				assert.NoError(t, err)
			}
		})
	}
}

func TestContextBefore(t *testing.T) {
	text := "Straße 1 Größe: 42"
	idx := strings.Index(text, "42")
	assert.Equal(t, "Straße 1 Größe: ", contextBefore(text, idx, 20))
	assert.Equal(t, "Größe: ", contextBefore(text, idx, 7))
	assert.Equal(t, "", contextBefore(text, 0, 20))
}

func TestMatchWithin_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := func(re *regexp.Regexp, text string) []string {
		time.Sleep(time.Second)
		return nil
	}
	_, err := matchWithin(ctx, slow, regexp.MustCompile("x"), "x", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLearnedValues_KeepLabelsAndCanonicalRate(t *testing.T) {
	ctx := context.Background()
	learner, extractor := newPair(repository.NewMemoryPatternStore())
	s := uuid.New()
	text := "Rechnung A-17. USt-Satz 19,00 % Vielen Dank"

	ok, err := learner.Learn(ctx, s, constants.InvoiceNumber, text, "A-17.")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = learner.Learn(ctx, s, constants.TaxRate, text, "19")
	require.NoError(t, err)
	require.True(t, ok)

	got := extractor.Extract(ctx, &s, text)
	assert.Equal(t, "A-17.", got[constants.InvoiceNumber])
	assert.Equal(t, "19", got[constants.TaxRate])
}
