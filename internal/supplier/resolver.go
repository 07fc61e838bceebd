// Package supplier matches documents to entries of the supplier directory.
package supplier

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
	"github.com/kuesten-code/Werkbank-sub000/internal/normalize"
	"github.com/kuesten-code/Werkbank-sub000/internal/repository"
)

type Resolver struct {
	dir    repository.SupplierDirectory
	logger *slog.Logger
}

func NewResolver(dir repository.SupplierDirectory, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{dir: dir, logger: logger}
}

// ResolveStructured tries the seller tax id, then the IBAN, then the exact
// seller name. The first hit wins. Lookup errors are logged and the next tier
// is tried; they are only returned when no tier produced a supplier.
func (r *Resolver) ResolveStructured(ctx context.Context, inv *entity.CanonicalInvoice) (*entity.Supplier, error) {
	if inv == nil {
		return nil, nil
	}

	tiers := []struct {
		name  string
		value string
		find  func(context.Context, string) (*entity.Supplier, error)
	}{
		{"tax_id", inv.SellerTaxID, r.dir.FindByTaxID},
		{"iban", inv.SellerIban, r.dir.FindByIban},
		{"name", inv.SellerName, r.dir.FindByName},
	}

	var errs []error
	for _, tier := range tiers {
		if strings.TrimSpace(tier.value) == "" {
			r.logger.Debug("supplier match skipped, no value", "by", tier.name)
			continue
		}
		s, err := tier.find(ctx, tier.value)
		if err != nil {
			r.logger.Warn("supplier lookup failed", "file", common.FileNameFromContext(ctx), "by", tier.name, "error", err)
			errs = append(errs, err)
			continue
		}
		if s != nil {
			r.logger.Info("supplier matched", "file", common.FileNameFromContext(ctx), "by", tier.name, "supplier_id", s.ID, "name", s.Name)
			return s, nil
		}
		r.logger.Debug("no supplier match", "by", tier.name)
	}
	return nil, errors.Join(errs...)
}

// ResolveText returns the first directory supplier whose name occurs in text,
// ignoring case and whitespace shape. Ties go to directory order.
func (r *Resolver) ResolveText(ctx context.Context, text string) (*entity.Supplier, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	all, err := r.dir.All(ctx)
	if err != nil {
		r.logger.Warn("supplier directory unavailable", "file", common.FileNameFromContext(ctx), "error", err)
		return nil, err
	}

	idx := NewNameIndex(all)
	s := idx.Match(text)
	if s == nil {
		r.logger.Debug("no supplier name found in text", "suppliers", len(all))
		return nil, nil
	}
	r.logger.Info("supplier matched", "file", common.FileNameFromContext(ctx), "by", "text", "supplier_id", s.ID, "name", s.Name)
	return s, nil
}

// NameIndex finds supplier names in text in a single pass.
type NameIndex struct {
	matcher *ahocorasick.Matcher
	owners  []int // pattern index -> position in suppliers
	sups    []*entity.Supplier
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(normalize.Whitespace(s)))
}

// NewNameIndex builds an index over the names of suppliers, in the given order.
// A name shared by several suppliers belongs to the first of them.
func NewNameIndex(suppliers []*entity.Supplier) *NameIndex {
	idx := &NameIndex{sups: suppliers}
	seen := make(map[string]struct{}, len(suppliers))
	var patterns [][]byte
	for i, s := range suppliers {
		name := foldName(s.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		patterns = append(patterns, []byte(name))
		idx.owners = append(idx.owners, i)
	}
	if len(patterns) > 0 {
		idx.matcher = ahocorasick.NewMatcher(patterns)
	}
	return idx
}

// Match returns the matching supplier with the lowest position, or nil.
func (n *NameIndex) Match(text string) *entity.Supplier {
	if n.matcher == nil {
		return nil
	}
	hits := n.matcher.Match([]byte(foldName(text)))
	best := -1
	for _, h := range hits {
		if h < 0 || h >= len(n.owners) {
			continue
		}
		if pos := n.owners[h]; best < 0 || pos < best {
			best = pos
		}
	}
	if best < 0 {
		return nil
	}
	return n.sups[best]
}
