package constants

import "strings"

// FileFormat classifies an input by how its text is acquired, not by MIME
// subtype. PAGE covers paginated containers that may hold image-only pages.
type FileFormat string

const (
	FormatText       FileFormat = "TEXT"
	FormatStructured FileFormat = "STRUCTURED"
	FormatPage       FileFormat = "PAGE"
	FormatImage      FileFormat = "IMAGE"
)

// FileFormats holds the allowed values for the format tag on a raw document.
var FileFormats = []string{"TEXT", "STRUCTURED", "PAGE", "IMAGE"}

// AllowedExtensions holds the default allowed file extensions for ingestion.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"docx": {},
	"xlsx": {},
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tiff": {},
	"tif":  {},
	"bmp":  {},
	"heic": {},
	"heif": {},
}

var extToFormat = map[string]FileFormat{
	"txt":  FormatText,
	"docx": FormatStructured,
	"xlsx": FormatStructured,
	"pdf":  FormatPage,
	"jpg":  FormatImage,
	"jpeg": FormatImage,
	"png":  FormatImage,
	"tiff": FormatImage,
	"tif":  FormatImage,
	"bmp":  FormatImage,
	"heic": FormatImage,
	"heif": FormatImage,
}

// IsHEICExt reports whether the extension needs conversion before OCR.
func IsHEICExt(ext string) bool {
	n := NormalizeExt(ext)
	return n == "heic" || n == "heif"
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FormatForExt maps a file extension to its acquisition format. The second
// return is false when the extension is not supported.
func FormatForExt(ext string) (FileFormat, bool) {
	f, ok := extToFormat[NormalizeExt(ext)]
	return f, ok
}
