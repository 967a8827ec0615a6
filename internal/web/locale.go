package web

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

type ctxKey int

const (
	ctxKeyLocale ctxKey = iota
)

const defaultLocale = "en"

// supportedLocales is ordered by preference, the first one is the fallback
// of the language matcher.
var supportedLocales = []language.Tag{ // nolint:gochecknoglobals
	language.English,
	language.French,
}

var localeMatcher = language.NewMatcher(supportedLocales) // nolint:gochecknoglobals

// loadLocales parses every locales/<lang>.po catalog.
func loadLocales(fsys fs.FS) (map[string]*gotext.Po, error) {
	names, err := fs.Glob(fsys, "locales/*.po")
	if err != nil {
		return nil, err
	}

	ret := make(map[string]*gotext.Po, len(names))
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}

		po := new(gotext.Po)
		po.Parse(b)
		ret[strings.TrimSuffix(path.Base(name), ".po")] = po
	}

	for _, tag := range supportedLocales {
		if _, ok := ret[localeName(tag)]; !ok {
			return nil, fmt.Errorf("missing catalog for locale %s", tag)
		}
	}

	return ret, nil
}

func localeName(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// negotiateLocale picks the best supported locale for an Accept-Language
// header value.
func negotiateLocale(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return defaultLocale
	}

	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return defaultLocale
	}

	return localeName(supportedLocales[index])
}

func (s *Server) localeDetector(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := negotiateLocale(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyLocale, locale)))
	})
}

func localeFromRequest(r *http.Request) string {
	if locale, ok := r.Context().Value(ctxKeyLocale).(string); ok {
		return locale
	}

	return defaultLocale
}
