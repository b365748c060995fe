package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ddvk/tachie/host"
)

const outputDirFileMode = 0o755

// SavePNG writes the active composite of doc to name + ".png", creating
// parent folders and replacing any existing file.
func SavePNG(doc host.Document, name string, opts host.PNGSaveOptions) (string, error) {
	file := name + ".png"
	if err := os.MkdirAll(filepath.Dir(file), outputDirFileMode); err != nil {
		return "", fmt.Errorf("create folder for %s: %w", file, err)
	}
	if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("remove %s: %w", file, err)
	}
	if err := doc.SaveAs(file, opts); err != nil {
		return "", fmt.Errorf("save %s: %w", file, err)
	}
	return file, nil
}
