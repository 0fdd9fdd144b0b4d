// Package i18n loads the embedded locale files and resolves the language of
// each request.
package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-jyoti/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator is safe for concurrent use once built.
type Translator struct {
	bundle     *goi18n.Bundle
	matcher    language.Matcher
	langs      []string
	localizers map[string]*goi18n.Localizer
}

// New loads every locales/active.<lang>.json file. defaultLang is the
// answer of Negotiate when no preference matches.
func New(defaultLang string) (*Translator, error) {
	defaultTag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocaleLoad, err)
	}

	bundle := goi18n.NewBundle(defaultTag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		data, err := LocaleFile(langCode)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
		detected = append(detected, langCode)
	}

	if len(detected) == 0 {
		return nil, errors.New(config.ErrTranslationsEmpty)
	}

	// The matcher falls back to its first tag, so the default goes first.
	slices.Sort(detected)
	if i := slices.Index(detected, defaultTag.String()); i > 0 {
		def := detected[i]
		detected = slices.Insert(slices.Delete(detected, i, i+1), 0, def)
	}

	tags := make([]language.Tag, 0, len(detected))
	localizers := make(map[string]*goi18n.Localizer, len(detected))
	for _, code := range detected {
		tags = append(tags, language.Make(code))
		localizers[code] = goi18n.NewLocalizer(bundle, code)
	}

	return &Translator{
		bundle:     bundle,
		matcher:    language.NewMatcher(tags),
		langs:      detected,
		localizers: localizers,
	}, nil
}

// LocaleFile returns the raw embedded messages of lang.
func LocaleFile(lang string) ([]byte, error) {
	return localeFS.ReadFile("locales/active." + lang + ".json")
}

// Languages lists the loaded language codes, default first.
func (t *Translator) Languages() []string {
	return slices.Clone(t.langs)
}

// Negotiate picks the best supported language. Each argument is an
// Accept-Language style list; the first argument with a match wins.
func (t *Translator) Negotiate(prefs ...string) string {
	_, idx := language.MatchStrings(t.matcher, prefs...)
	if idx < 0 || idx >= len(t.langs) {
		return t.langs[0]
	}
	return t.langs[idx]
}

// Msg translates key. Unknown languages use the default; unknown keys
// come back unchanged.
func (t *Translator) Msg(lang, key string, data map[string]any) string {
	loc, ok := t.localizers[lang]
	if !ok {
		loc = t.localizers[t.langs[0]]
	}
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyLang, lang,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}
