package constants

import "strings"

// Document formats an intake call can route on.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
	XML   = "XML"
)

// FileTypes holds the formats the intake pipeline knows about.
var FileTypes = []string{PDF, IMAGE, XML}

// AllowedExtensions holds the default extensions picked up by the inbox watcher.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"xml":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
	"gif":  {},
	"webp": {},
}

var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
	"gif":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat maps a normalized extension to PDF, IMAGE or XML.
// Unknown extensions map to "".
func MapExtToFormat(ext string) string {
	ext = NormalizeExt(ext)
	if ext == "pdf" {
		return PDF
	}
	if ext == "xml" {
		return XML
	}
	if _, ok := imageExtensions[ext]; ok {
		return IMAGE
	}
	return ""
}

// IsAllowedExt reports whether ext is in AllowedExtensions.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
