// Package locale holds the user facing message tables.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// Message ids.
const (
	NoDocuments    = "NoDocuments"
	Ready          = "Ready"
	ExportStarted  = "ExportStarted"
	LayerExported  = "LayerExported"
	ExportFinished = "ExportFinished"
)

//go:embed messages/*.toml
var messageFiles embed.FS

// NewBundle loads every embedded message table. English is the fallback.
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(messageFiles, "messages/*.toml")
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if _, err := bundle.LoadMessageFileFS(messageFiles, file); err != nil {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return bundle, nil
}

// Localizer translates message ids for a preferred list of languages.
type Localizer struct {
	localizer *i18n.Localizer
}

// New returns a Localizer preferring langs in order, e.g. "zh-CN", "en".
func New(langs ...string) (*Localizer, error) {
	bundle, err := NewBundle()
	if err != nil {
		return nil, err
	}
	return &Localizer{localizer: i18n.NewLocalizer(bundle, langs...)}, nil
}

// English is used when no language was configured.
func English() *Localizer {
	l, err := New(language.English.String())
	if err != nil {
		// the tables are embedded, a failure here is a build defect
		panic(err)
	}
	return l
}

func (l *Localizer) Translate(id string, data map[string]any) string {
	return l.localize(&i18n.LocalizeConfig{
		MessageID:      id,
		TemplateData:   data,
		DefaultMessage: &i18n.Message{ID: id, Other: id},
	})
}

// TranslateCount picks the plural form for count. data may be nil and is not
// modified; Count is always available to the template.
func (l *Localizer) TranslateCount(id string, count int, data map[string]any) string {
	template := make(map[string]any, len(data)+1)
	maps.Copy(template, data)
	template["Count"] = count
	return l.localize(&i18n.LocalizeConfig{
		MessageID:      id,
		TemplateData:   template,
		PluralCount:    count,
		DefaultMessage: &i18n.Message{ID: id, Other: id},
	})
}

func (l *Localizer) localize(cfg *i18n.LocalizeConfig) string {
	msg, err := l.localizer.Localize(cfg)
	if err != nil {
		log.WithError(err).WithField("message", cfg.MessageID).Warn("translation failed")
		if msg == "" {
			return cfg.MessageID
		}
	}
	return msg
}
