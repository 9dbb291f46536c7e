// Package converter turns the flat translation tables maintained by the
// content team into the nested JSON dictionaries embedded by the locale package.
//
// Table format, one entry per line:
//
//	months.january|January|जनवरी
//
// Blank lines and lines starting with '#' are ignored.
package converter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Languages is the column order of a table after the key column.
var Languages = []string{"en", "hi"}

// DictionaryConverter converts translation tables into nested dictionaries.
type DictionaryConverter struct {
	// Fill copies the English text into empty cells of other languages.
	Fill bool
}

// Dictionaries maps a language code to its nested dictionary.
type Dictionaries map[string]map[string]any

// ConvertTable reads a table and builds one dictionary per language.
func (dc *DictionaryConverter) ConvertTable(r io.Reader) (Dictionaries, error) {
	out := Dictionaries{}
	for _, lang := range Languages {
		out[lang] = map[string]any{}
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != len(Languages)+1 {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", lineNo, len(Languages)+1, len(parts))
		}

		key := strings.TrimSpace(parts[0])
		if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
			return nil, fmt.Errorf("line %d: invalid key %q", lineNo, key)
		}

		english := strings.TrimSpace(parts[1])
		for i, lang := range Languages {
			text := strings.TrimSpace(parts[i+1])
			if text == "" && dc.Fill {
				text = english
			}
			if text == "" {
				continue
			}
			if err := insert(out[lang], strings.Split(key, "."), text); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}

	return out, scanner.Err()
}

func insert(node map[string]any, path []string, text string) error {
	for i, part := range path {
		if i == len(path)-1 {
			if _, exists := node[part]; exists {
				return fmt.Errorf("duplicate key %q", strings.Join(path, "."))
			}
			node[part] = text
			return nil
		}
		next, exists := node[part]
		if !exists {
			child := map[string]any{}
			node[part] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("key %q is both a value and a group", strings.Join(path[:i+1], "."))
		}
		node = child
	}
	return nil
}

// WriteDictionaries writes <dir>/<lang>.json for every language.
func (dc *DictionaryConverter) WriteDictionaries(dir string, dicts Dictionaries) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	langs := make([]string, 0, len(dicts))
	for lang := range dicts {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		data, err := json.MarshalIndent(dicts[lang], "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s: %w", lang, err)
		}
		path := filepath.Join(dir, lang+".json")
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// FilterByPrefix keeps the table lines whose key starts with one of prefixes.
// It returns the number of lines kept.
func (dc *DictionaryConverter) FilterByPrefix(r io.Reader, w io.Writer, prefixes []string) (int, error) {
	scanner := bufio.NewScanner(r)
	writer := bufio.NewWriter(w)
	defer func() {
		_ = writer.Flush()
	}()

	kept := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, _, _ := strings.Cut(line, "|")
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				_, _ = writer.WriteString(line + "\n")
				kept++
				break
			}
		}
	}
	return kept, scanner.Err()
}
