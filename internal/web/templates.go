package web

import (
	"crypto/sha512"
	"encoding/base64"
	"fluggy/internal/back"
	"fluggy/internal/util"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/russross/blackfriday/v2"
)

func (s *Server) loadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	layouts, err := fs.Glob(fsys, "templates/layouts/*.html")
	if err != nil {
		return nil, err
	}

	includes, err := fs.Glob(fsys, "templates/includes/*.html")
	if err != nil {
		return nil, err
	}

	ret := make(map[string]*template.Template, len(layouts))
	for _, layout := range layouts {
		tpl, err := template.New("").
			Funcs(s.getTemplateFuncMap(fsys)).
			ParseFS(fsys, append(includes, layout)...)
		if err != nil {
			return nil, err
		}

		ret[path.Base(layout)] = tpl
	}

	return ret, nil
}

func (s *Server) getTemplateFuncMap(fsys fs.FS) template.FuncMap {
	return template.FuncMap{
		"t": s.translate,

		"tf": func(locale string, str string, args ...interface{}) string {
			return fmt.Sprintf(s.translate(locale, str), args...)
		},

		"tmd": func(locale, str string) template.HTML {
			return template.HTML(blackfriday.Run( // nolint:gosec
				[]byte(s.translate(locale, str)),
			))
		},

		"elo": func(locale string, u back.User) string {
			if !u.IsRanked() {
				return s.translate(locale, "unranked")
			}

			return strconv.Itoa(u.Elo)
		},

		"cardClass":      tplCardClass,
		"date":           util.Date,
		"assetURL":       tplAssetURL,
		"assetIntegrity": tplAssetIntegrity(fsys),
	}
}

func (s *Server) translate(locale string, str string) string {
	po, ok := s.locales[locale]
	if !ok {
		po = s.locales[defaultLocale]
	}

	return po.Get(str)
}

// tplCardClass returns the CSS classes of a player card, unknown colors
// are skipped.
func tplCardClass(u back.User) string {
	primary, secondary := u.CardColors()

	classes := make([]string, 0, 2)
	if primary != "" {
		classes = append(classes, "card-"+primary)
	}
	if secondary != "" {
		classes = append(classes, "card-secondary-"+secondary)
	}

	return strings.Join(classes, " ")
}

func tplAssetURL(name string) string {
	return "/_/" + name
}

func tplAssetIntegrity(fsys fs.FS) func(name string) (string, error) {
	var mu sync.Mutex
	hashCache := map[string]string{}

	return func(name string) (string, error) {
		mu.Lock()
		defer mu.Unlock()

		if hash, ok := hashCache[name]; ok {
			return hash, nil
		}

		b, err := fs.ReadFile(fsys, path.Join("static", name))
		if err != nil {
			return "", err
		}

		sum := sha512.Sum512(b)
		hashCache[name] = "sha512-" + base64.StdEncoding.EncodeToString(sum[:])

		return hashCache[name], nil
	}
}
