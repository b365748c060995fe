// Package export writes the painting and paintingface layers of the active
// document as individual PNG files.
package export

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ddvk/tachie/host"
	"github.com/ddvk/tachie/locale"
)

const (
	DefaultPaintingGroup = "painting"
	DefaultFaceGroup     = "paintingface"
	DefaultFaceFolder    = "face"
)

type Settings struct {
	PaintingGroup string
	FaceGroup     string
	// FaceFolder is relative to the document folder.
	FaceFolder string
	Options    host.PNGSaveOptions
}

func DefaultSettings() Settings {
	return Settings{
		PaintingGroup: DefaultPaintingGroup,
		FaceGroup:     DefaultFaceGroup,
		FaceFolder:    DefaultFaceFolder,
		Options:       host.DefaultPNGSaveOptions(),
	}
}

type Exporter struct {
	host     host.Host
	settings Settings
	messages *locale.Localizer
	log      log.FieldLogger
}

type Option func(*Exporter)

func WithLocalizer(l *locale.Localizer) Option {
	return func(e *Exporter) {
		e.messages = l
	}
}

func WithLogger(l log.FieldLogger) Option {
	return func(e *Exporter) {
		e.log = l
	}
}

func New(h host.Host, settings Settings, opts ...Option) *Exporter {
	e := &Exporter{
		host:     h,
		settings: settings,
		log:      log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.messages == nil {
		e.messages = locale.English()
	}
	return e
}

// Run exports every painting layer to <folder>/<layer>.png and every
// paintingface layer to <folder>/<face folder>/<layer>.png, one at a time with
// only that layer shown. Afterwards the painting layers are visible again and
// the paintingface layers stay hidden. The first failure stops the run; the
// report lists what was written up to that point.
func (e *Exporter) Run(ctx context.Context) (*Report, error) {
	doc, err := e.host.ActiveDocument()
	if err != nil {
		e.host.Alert(e.messages.Translate(locale.NoDocuments, nil))
		return nil, err
	}

	root := strings.ReplaceAll(doc.Path(), `\`, "/")
	base := BaseName(doc.Name())
	report := NewReport(doc.Name(), root)
	logger := e.log.WithFields(log.Fields{
		"doc": doc.Name(),
		"run": report.RunID.String()[:8],
	})

	paintingSet, err := doc.LayerSet(e.settings.PaintingGroup)
	if err != nil {
		return report, err
	}
	faceSet, err := doc.LayerSet(e.settings.FaceGroup)
	if err != nil {
		return report, err
	}

	paintings := Collect(paintingSet, PaintingMatcher(base))
	faces := Collect(faceSet, FaceMatcher)
	logger.Info(e.messages.Translate(locale.ExportStarted, map[string]any{
		"Document": doc.Name(),
		"Root":     root,
	}))
	logger.Debugf("%d painting, %d paintingface layers", len(paintings), len(faces))

	for _, layer := range paintings {
		if err := e.exportLayer(ctx, doc, layer, root+"/"+layer.Name(), paintingSet.Name(), report, logger); err != nil {
			return report, err
		}
	}
	faceRoot := root + "/" + e.settings.FaceFolder
	for _, layer := range faces {
		if err := e.exportLayer(ctx, doc, layer, faceRoot+"/"+layer.Name(), faceSet.Name(), report, logger); err != nil {
			return report, err
		}
	}

	for _, layer := range paintings {
		layer.SetVisible(true)
	}

	logger.Info(e.messages.TranslateCount(locale.ExportFinished, len(report.Files), map[string]any{
		"Document": doc.Name(),
		"Root":     root,
	}))
	return report, nil
}

func (e *Exporter) exportLayer(ctx context.Context, doc host.Document, layer host.Layer, name, group string, report *Report, logger log.FieldLogger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	layer.SetVisible(true)
	file, err := SavePNG(doc, name, e.settings.Options)
	if err != nil {
		return err
	}
	layer.SetVisible(false)

	report.Add(group, layer.Name(), file)
	logger.WithField("layer", layer.Name()).Debug(e.messages.Translate(locale.LayerExported, map[string]any{
		"File": file,
	}))
	return nil
}
