package service

import (
	"embed"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Localizer renders user-visible texts. It carries a default language for
// callers that don't know their user, and per-call language selection for
// those that do.
type Localizer struct {
	bundle      *i18n.Bundle
	defaultLang language.Tag
}

func NewLocalizer(defaultLang string) (*Localizer, error) {
	lang, err := language.Parse(defaultLang)
	if err != nil {
		return nil, err
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + file.Name())
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(data, file.Name()); err != nil {
			return nil, err
		}
	}

	return &Localizer{
		bundle:      bundle,
		defaultLang: lang,
	}, nil
}

// Localize renders a message in the default language. Unknown IDs fall
// back to the ID itself so a missing translation never breaks a reply.
func (s *Localizer) Localize(messageID string, data map[string]any) string {
	return s.LocalizeLang(s.defaultLang.String(), messageID, data)
}

// LocalizeLang renders a message in an explicitly chosen language.
func (s *Localizer) LocalizeLang(lang, messageID string, data map[string]any) string {
	localizer := i18n.NewLocalizer(s.bundle, lang, s.defaultLang.String())
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
