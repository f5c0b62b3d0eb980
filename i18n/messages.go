// Package i18n resolves message keys to localized text.
//
// Messages live in YAML bundles named after their language tag (en.yaml,
// ru.yaml). Defaults are embedded; a directory of bundles may add locales or
// override individual keys.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed bundles/*.yaml
var embedded embed.FS

const bundleExt = ".yaml"

// Source looks up localized messages.
type Source struct {
	cat     *catalog.Builder
	texts   bundles
	tags    []language.Tag
	matcher language.Matcher
}

type bundles map[language.Tag]map[string]string

// New builds a Source from the embedded bundles merged with the bundles found
// in dir. An empty dir uses the embedded bundles only. Keys missing from a
// locale resolve to the fallback locale's text.
func New(fallback language.Tag, dir string) (*Source, error) {
	all := bundles{}
	if err := all.loadFS(embedded, "bundles"); err != nil {
		return nil, err
	}
	if dir != "" {
		if err := all.loadFS(os.DirFS(dir), "."); err != nil {
			return nil, err
		}
	}
	return newSource(fallback, all)
}

func newSource(fallback language.Tag, all bundles) (*Source, error) {
	base, ok := all[fallback]
	if !ok {
		return nil, fmt.Errorf("i18n: no bundle for fallback locale %s", fallback)
	}

	tags := []language.Tag{fallback}
	others := make([]language.Tag, 0, len(all))
	for tag := range all {
		if tag != fallback {
			others = append(others, tag)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	tags = append(tags, others...)

	cat := catalog.NewBuilder(catalog.Fallback(fallback))
	texts := make(bundles, len(tags))
	for _, tag := range tags {
		merged := make(map[string]string, len(base))
		for key, text := range base {
			merged[key] = text
		}
		for key, text := range all[tag] {
			merged[key] = text
		}
		for key, text := range merged {
			if err := cat.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("i18n: %s %s: %w", tag, key, err)
			}
		}
		texts[tag] = merged
	}

	return &Source{cat: cat, texts: texts, tags: tags, matcher: language.NewMatcher(tags)}, nil
}

func (b bundles) loadFS(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("i18n: read bundles: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != bundleExt {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(e.Name(), bundleExt))
		if err != nil {
			return fmt.Errorf("i18n: bundle %s: %w", e.Name(), err)
		}
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(root, e.Name())))
		if err != nil {
			return fmt.Errorf("i18n: bundle %s: %w", e.Name(), err)
		}
		msgs := map[string]string{}
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return fmt.Errorf("i18n: bundle %s: %w", e.Name(), err)
		}
		if b[tag] == nil {
			b[tag] = map[string]string{}
		}
		for k, v := range msgs {
			b[tag][k] = v
		}
	}
	return nil
}

// Locales lists the supported locales, fallback first.
func (s *Source) Locales() []language.Tag {
	out := make([]language.Tag, len(s.tags))
	copy(out, s.tags)
	return out
}

// Negotiate picks the best supported locale for an Accept-Language header
// value. Unparseable or empty headers yield the fallback locale.
func (s *Source) Negotiate(acceptLanguage string) language.Tag {
	if strings.TrimSpace(acceptLanguage) == "" {
		return s.tags[0]
	}
	wanted, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(wanted) == 0 {
		return s.tags[0]
	}
	return s.resolve(wanted...)
}

// Message returns the text of key for the locale closest to tag. Without args
// the text is returned verbatim; with args it is used as a format string.
// Unknown keys are returned unchanged.
func (s *Source) Message(key string, args []any, tag language.Tag) string {
	locale := s.resolve(tag)
	if len(args) == 0 {
		if text, ok := s.texts[locale][key]; ok {
			return text
		}
		return key
	}
	return message.NewPrinter(locale, message.Catalog(s.cat)).Sprintf(key, args...)
}

func (s *Source) resolve(wanted ...language.Tag) language.Tag {
	_, idx, conf := s.matcher.Match(wanted...)
	if conf == language.No || idx < 0 || idx >= len(s.tags) {
		return s.tags[0]
	}
	return s.tags[idx]
}
