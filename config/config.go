// Package config reads exporter settings from TACHIE_* environment variables
// and command line flags; flags win.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"

	"github.com/ddvk/tachie/export"
	"github.com/ddvk/tachie/host"
)

type Config struct {
	Lang          string `env:"TACHIE_LANG"            envDefault:"en"`
	LogLevel      string `env:"TACHIE_LOG_LEVEL"       envDefault:"info"`
	PaintingGroup string `env:"TACHIE_PAINTING_GROUP"  envDefault:"painting"`
	FaceGroup     string `env:"TACHIE_FACE_GROUP"      envDefault:"paintingface"`
	FaceFolder    string `env:"TACHIE_FACE_FOLDER"     envDefault:"face"`
	Compression   int    `env:"TACHIE_PNG_COMPRESSION" envDefault:"6"`
	Workers       int    `env:"TACHIE_WORKERS"         envDefault:"1"`
	Report        string `env:"TACHIE_REPORT"`

	// Documents are the positional arguments.
	Documents []string
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "message language, e.g. en or zh-CN")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")
	fs.StringVar(&cfg.PaintingGroup, "painting-group", cfg.PaintingGroup, "group holding the painting layers")
	fs.StringVar(&cfg.FaceGroup, "face-group", cfg.FaceGroup, "group holding the paintingface layers")
	fs.StringVar(&cfg.FaceFolder, "face-folder", cfg.FaceFolder, "folder for paintingface files, relative to the document")
	fs.IntVar(&cfg.Compression, "compression", cfg.Compression, "PNG compression 0-9")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "documents exported concurrently")
	fs.StringVar(&cfg.Report, "report", cfg.Report, "write a YAML report of exported files")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Documents = fs.Args()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Compression < 0 || c.Compression > 9 {
		errs = append(errs, fmt.Errorf("compression %d out of range 0-9", c.Compression))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.PaintingGroup == "" || c.FaceGroup == "" {
		errs = append(errs, errors.New("group names must not be empty"))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level is the parsed log level; Validate has already checked it.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func (c Config) ExportSettings() export.Settings {
	return export.Settings{
		PaintingGroup: c.PaintingGroup,
		FaceGroup:     c.FaceGroup,
		FaceFolder:    c.FaceFolder,
		Options: host.PNGSaveOptions{
			Compression:        c.Compression,
			LowercaseExtension: true,
		},
	}
}
