// Package locale provides the bilingual (English / Hindi) string tables, month
// and enum labels, and number formatting used by every dashboard view.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"viksitkanpur/internal/models/records"

	"golang.org/x/text/language"
)

// Lang is a supported display language.
type Lang string

const (
	English Lang = "en"
	Hindi   Lang = "hi"
)

var supported = []Lang{English, Hindi}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Hindi})

//go:embed dictionaries/*.json
var dictionaryFS embed.FS

var tables = map[Lang]map[string]any{}

func init() {
	for _, lang := range supported {
		raw, err := dictionaryFS.ReadFile("dictionaries/" + string(lang) + ".json")
		if err != nil {
			panic(fmt.Sprintf("locale: missing dictionary %s: %v", lang, err))
		}
		table := map[string]any{}
		if err := json.Unmarshal(raw, &table); err != nil {
			panic(fmt.Sprintf("locale: invalid dictionary %s: %v", lang, err))
		}
		tables[lang] = table
	}
}

// Match resolves a BCP 47 tag or an Accept-Language style value to a supported
// language. The second value is false when nothing matched.
func Match(s string) (Lang, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return English, false
	}
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return English, false
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English, false
	}
	return supported[idx], true
}

// Parse is Match without the flag; unknown input resolves to English.
func Parse(s string) Lang {
	lang, _ := Match(s)
	return lang
}

// Tag returns the x/text language tag.
func (l Lang) Tag() language.Tag {
	if l == Hindi {
		return language.Hindi
	}
	return language.English
}

// Translator resolves dictionary keys for one language.
type Translator struct {
	lang    Lang
	machine TextTranslator
}

// For returns the translator of lang. Unsupported values fall back to English.
func For(lang Lang) Translator {
	if _, ok := tables[lang]; !ok {
		lang = English
	}
	return Translator{lang: lang}
}

// WithMachine attaches a machine translator used for category names missing
// from the dictionary.
func (t Translator) WithMachine(m TextTranslator) Translator {
	t.machine = m
	return t
}

// Lang returns the language of the translator. The zero Translator is English.
func (t Translator) Lang() Lang {
	if t.lang == "" {
		return English
	}
	return t.lang
}

// T looks up a dot separated key. Missing keys fall back to English and then to
// the key itself.
func (t Translator) T(key string) string {
	if s, ok := lookup(tables[t.lang], key); ok {
		return s
	}
	if t.lang != English {
		if s, ok := lookup(tables[English], key); ok {
			return s
		}
	}
	return key
}

// Has reports whether key exists in the translator's own table.
func (t Translator) Has(key string) bool {
	_, ok := lookup(tables[t.lang], key)
	return ok
}

func lookup(table map[string]any, key string) (string, bool) {
	var node any = table
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", false
		}
		if node, ok = m[part]; !ok {
			return "", false
		}
	}
	s, ok := node.(string)
	return s, ok
}

var monthKeys = [...]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// MonthName returns the localized full month name.
func (t Translator) MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return t.T("months." + monthKeys[m-1])
}

// PriorityLabel returns the localized priority group label, e.g. "High Priority".
func (t Translator) PriorityLabel(p records.Priority) string {
	return t.T("priority." + string(p))
}

// StatusLabel returns the localized complaint status.
func (t Translator) StatusLabel(s records.Status) string {
	return t.T("status." + string(s))
}

// WorkerStatusLabel returns the localized worker availability.
func (t Translator) WorkerStatusLabel(s records.WorkerStatus) string {
	return t.T("worker_status." + string(s))
}

// DensityLabel returns the localized population density class.
func (t Translator) DensityLabel(class string) string {
	return t.T("density." + class)
}

// Fallback returns a placeholder such as "Unknown Department".
func (t Translator) Fallback(name string) string {
	return t.T("fallback." + name)
}
