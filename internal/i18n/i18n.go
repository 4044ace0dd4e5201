// Package i18n holds the supported language table and UI translations.
package i18n

import (
	"embed"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Default is the language used for unknown or empty codes.
const Default = "en"

// Language describes one supported UI and answer language.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

var languages = []Language{
	{"en", "English", "English"},
	{"es", "Spanish", "Español"},
	{"fr", "French", "Français"},
	{"de", "German", "Deutsch"},
	{"it", "Italian", "Italiano"},
	{"ja", "Japanese", "日本語"},
	{"zh", "Chinese", "中文"},
	{"ar", "Arabic", "العربية"},
	{"pt", "Portuguese", "Português"},
	{"ru", "Russian", "Русский"},
	{"ko", "Korean", "한국어"},
}

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

func lookup(code string) (Language, bool) {
	for _, l := range languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// Supported reports whether code is one of the supported language codes.
func Supported(code string) bool {
	_, ok := lookup(code)
	return ok
}

// Resolve maps code to a supported language code. Region suffixes are
// ignored ("pt-BR" resolves to "pt"); anything unknown resolves to Default.
func Resolve(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if Supported(code) {
		return code
	}
	return Default
}

// Name returns the English name of the language, as used in LLM prompts.
// Unknown codes return "English".
func Name(code string) string {
	l, _ := lookup(Resolve(code))
	return l.Name
}

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	loadOnce     sync.Once
	translations map[string]map[string]string
)

func catalog() map[string]map[string]string {
	loadOnce.Do(func() {
		translations = make(map[string]map[string]string, len(languages))
		for _, l := range languages {
			strs, err := loadLocale(l.Code)
			if err != nil {
				slog.Warn("i18n: failed to load locale", slog.String("language", l.Code), slog.Any("error", err))
				continue
			}
			translations[l.Code] = strs
		}
	})
	return translations
}

// loadLocale reads locales/<code>.yaml and flattens nested keys into
// dot-separated paths ("home.title").
func loadLocale(code string) (map[string]string, error) {
	data, err := localeFS.ReadFile(path.Join("locales", code+".yaml"))
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse %s.yaml: %w", code, err)
	}
	out := make(map[string]string)
	flatten("", tree, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// T looks up a dot-separated key for lang. Missing keys fall back to English,
// then to the key itself.
func T(lang, key string) string {
	c := catalog()
	if s, ok := c[Resolve(lang)][key]; ok {
		return s
	}
	if s, ok := c[Default][key]; ok {
		return s
	}
	return key
}
