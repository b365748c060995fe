package main

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/ddvk/tachie/config"
	"github.com/ddvk/tachie/locale"
	"github.com/ddvk/tachie/scene"
)

func listLayers(path string, messages *locale.Localizer) error {
	doc, err := scene.Open(path)
	if err != nil {
		return err
	}
	log.Info("parsed: ", doc)
	doc.Walk(func(l *scene.Layer, depth int) {
		log.Infof("%s%v", strings.Repeat("\t", depth), l)
	})
	log.WithField("doc", doc.Name()).Info(messages.Translate(locale.Ready, nil))
	return nil
}

func _main() error {
	if len(os.Args) < 2 {
		log.Print("missing file")
		return nil
	}
	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}
	messages, err := locale.New(cfg.Lang, "en")
	if err != nil {
		return err
	}
	for _, filename := range os.Args[1:] {
		if err := listLayers(filename, messages); err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
	}
	return nil
}

func main() {
	prefixed := &prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
		ForceColors:     true,
	}
	log.SetFormatter(prefixed)
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
	err := _main()
	if err != nil {
		log.Fatal(err)
	}
}
