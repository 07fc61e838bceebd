package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
	"github.com/kuesten-code/Werkbank-sub000/internal/normalize"
)

// SupplierDirectory looks suppliers up by their identifying attributes.
// Find methods return nil and no error when nothing matches. All returns
// the directory order (name, then id), which callers rely on for tie-breaks.
type SupplierDirectory interface {
	FindByTaxID(ctx context.Context, taxID string) (*entity.Supplier, error)
	FindByIban(ctx context.Context, iban string) (*entity.Supplier, error)
	FindByName(ctx context.Context, name string) (*entity.Supplier, error)
	All(ctx context.Context) ([]*entity.Supplier, error)
	Create(ctx context.Context, name, taxID, iban string) (*entity.Supplier, error)
}

// newSupplier validates and normalizes the attributes of a new supplier.
func newSupplier(name, taxID, iban string) (*entity.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewAppError("INVALID_SUPPLIER", "supplier name is required", common.ErrInvalidInput)
	}
	return &entity.Supplier{
		ID:        uuid.New(),
		Name:      name,
		TaxID:     normalize.Identifier(taxID),
		Iban:      normalize.Identifier(iban),
		CreatedAt: time.Now().UTC(),
	}, nil
}

type memorySupplierDirectory struct {
	mu        sync.RWMutex
	suppliers []*entity.Supplier
}

// NewMemorySupplierDirectory returns a process-local SupplierDirectory seeded with suppliers.
func NewMemorySupplierDirectory(suppliers ...*entity.Supplier) SupplierDirectory {
	d := &memorySupplierDirectory{}
	for _, s := range suppliers {
		cp := *s
		cp.TaxID = normalize.Identifier(cp.TaxID)
		cp.Iban = normalize.Identifier(cp.Iban)
		d.suppliers = append(d.suppliers, &cp)
	}
	d.sort()
	return d
}

func (d *memorySupplierDirectory) sort() {
	sort.SliceStable(d.suppliers, func(i, j int) bool {
		a, b := d.suppliers[i], d.suppliers[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID.String() < b.ID.String()
	})
}

func (d *memorySupplierDirectory) find(match func(*entity.Supplier) bool) *entity.Supplier {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.suppliers {
		if match(s) {
			cp := *s
			return &cp
		}
	}
	return nil
}

func (d *memorySupplierDirectory) FindByTaxID(_ context.Context, taxID string) (*entity.Supplier, error) {
	taxID = normalize.Identifier(taxID)
	if taxID == "" {
		return nil, nil
	}
	return d.find(func(s *entity.Supplier) bool { return s.TaxID == taxID }), nil
}

func (d *memorySupplierDirectory) FindByIban(_ context.Context, iban string) (*entity.Supplier, error) {
	iban = normalize.Identifier(iban)
	if iban == "" {
		return nil, nil
	}
	return d.find(func(s *entity.Supplier) bool { return s.Iban == iban }), nil
}

func (d *memorySupplierDirectory) FindByName(_ context.Context, name string) (*entity.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return d.find(func(s *entity.Supplier) bool { return s.Name == name }), nil
}

func (d *memorySupplierDirectory) All(_ context.Context) ([]*entity.Supplier, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*entity.Supplier, 0, len(d.suppliers))
	for _, s := range d.suppliers {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (d *memorySupplierDirectory) Create(_ context.Context, name, taxID, iban string) (*entity.Supplier, error) {
	s, err := newSupplier(name, taxID, iban)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suppliers = append(d.suppliers, s)
	d.sort()
	cp := *s
	return &cp, nil
}
