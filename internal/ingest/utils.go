package ingest

import (
	"path/filepath"
	"strings"

	"github.com/kuesten-code/Werkbank-sub000/constants"
)

// AllowedExt checks ext against exts, or against constants.AllowedExtensions when exts is nil.
func AllowedExt(ext string, exts map[string]struct{}) bool {
	if exts == nil {
		exts = constants.AllowedExtensions
	}
	_, ok := exts[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// ExtSet builds an extension set from a list like "pdf,.PNG".
func ExtSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return nil
	}
	out := map[string]struct{}{}
	for _, e := range exts {
		if e = constants.NormalizeExt(e); e != "" {
			out[e] = struct{}{}
		}
	}
	return out
}
