// Package i18n renders domain errors as localized, user-facing text.
package i18n

import (
	"bytes"
	stderrors "errors"
	"strings"
	"sync"
	"text/template"

	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	i18ncatalog "github.com/louisbranch/dmscreen/internal/platform/i18n/catalog"
)

const errorsNamespace = "errors"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[apperrors.Code]string
}

var (
	catalogsMu sync.RWMutex
	// catalogs caches built catalogs by requested locale.
	catalogs = map[string]*Catalog{}
)

// GetCatalog returns the catalog for the given locale, falling back to the
// base locale when the locale has no error messages.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, errorsNamespace)
	if c, ok := lookupCatalog(resolved); ok {
		return storeCatalogIfAbsent(requested, c)
	}
	built := storeCatalogIfAbsent(resolved, NewCatalog(resolved, toCodeMap(messages)))
	return storeCatalogIfAbsent(requested, built)
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the template for code with metadata. Unknown codes render
// as the code itself; broken templates render unexecuted.
func (c *Catalog) Format(code apperrors.Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return string(code)
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// Message renders err for a user in locale. Errors without a domain code
// render as the UNKNOWN message.
func Message(locale string, err error) string {
	if err == nil {
		return ""
	}
	var domainErr *apperrors.Error
	if !stderrors.As(err, &domainErr) {
		return GetCatalog(locale).Format(apperrors.CodeUnknown, nil)
	}
	return GetCatalog(locale).Format(domainErr.Code, domainErr.Metadata)
}

// RegisterCatalog registers a catalog for the given locale. Intended for
// init or single-threaded test setup.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

// NewCatalog creates a new catalog with the given locale and messages.
func NewCatalog(locale string, messages map[apperrors.Code]string) *Catalog {
	cloned := make(map[apperrors.Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{
		locale:   locale,
		messages: cloned,
	}
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

func storeCatalogIfAbsent(locale string, candidate *Catalog) *Catalog {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[locale]; ok {
		return existing
	}
	catalogs[locale] = candidate
	return candidate
}

func toCodeMap(messages map[string]string) map[apperrors.Code]string {
	out := make(map[apperrors.Code]string, len(messages))
	for key, value := range messages {
		out[apperrors.Code(key)] = value
	}
	return out
}
