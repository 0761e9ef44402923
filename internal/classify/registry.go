package classify

import (
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/ocr"
)

// Reference is one loaded template: a grayscale raster plus the document
// type its filename resolves to.
type Reference struct {
	Name string
	Type constants.DocumentType
	gray *image.Gray
}

// resizedTo scales the reference to the input's dimensions so the
// correlation compares full image against full image.
func (r *Reference) resizedTo(w, h int) *image.Gray {
	b := r.gray.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return r.gray
	}
	return ocr.ToGray(imaging.Resize(r.gray, w, h, imaging.Linear))
}

// Registry holds the reference templates. It is loaded once at startup and
// append-only afterwards; lookups take the read lock so batch workers share
// it freely.
type Registry struct {
	mu     sync.RWMutex
	refs   map[string]*Reference
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{refs: make(map[string]*Reference), logger: logger}
}

// LoadDir reads every raster image in dir as a reference template, named by
// its file stem. Unreadable or non-image files are skipped with a log line,
// not an error; a missing directory is an error.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, common.NewAppError(common.CodeConfigError, "read template directory "+dir, err)
	}

	loaded := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if format, ok := constants.FormatForExt(ext); !ok || format != constants.FormatImage {
			r.logger.Debug("classify.registry.skip", "file", e.Name())
			continue
		}
		img, err := imaging.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			r.logger.Warn("classify.registry.unreadable", "file", e.Name(), "error", err)
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		r.Register(stem, img)
		loaded++
	}

	r.logger.Info("classify.registry.loaded", "dir", dir, "templates", loaded)
	return loaded, nil
}

// Register adds or replaces a reference under the given name. Callers may
// register custom types at runtime; their stems become the type name.
func (r *Registry) Register(name string, img image.Image) *Reference {
	ref := &Reference{Name: name, Type: TypeForName(name), gray: ocr.ToGray(img)}
	r.mu.Lock()
	r.refs[name] = ref
	r.mu.Unlock()
	r.logger.Debug("classify.registry.registered", "name", name, "type", string(ref.Type))
	return ref
}

// References returns the templates sorted by name, giving the matcher a
// fixed enumeration order.
func (r *Registry) References() []*Reference {
	r.mu.RLock()
	out := make([]*Reference, 0, len(r.refs))
	for _, ref := range r.refs {
		out = append(out, ref)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.refs)
}

// Template stems may carry a numeric variant suffix ("passport_2").
var reVariantSuffix = regexp.MustCompile(`[_-]\d+$`)

// TypeForName resolves a template name to a document type: recognized
// aliases canonicalize, anything else becomes a custom type under its own
// lowercased name.
func TypeForName(name string) constants.DocumentType {
	base := reVariantSuffix.ReplaceAllString(strings.TrimSpace(name), "")
	if dt, ok := constants.Canonicalize(strings.ReplaceAll(base, "_", " ")); ok {
		return dt
	}
	if dt, ok := constants.Canonicalize(base); ok {
		return dt
	}
	return constants.DocumentType(strings.ToLower(base))
}
