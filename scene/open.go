package scene

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Open loads a document, choosing the reader by file extension.
func Open(path string) (*Scene, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".psd":
		return ReadFile(path)
	case ".yaml", ".yml":
		return ReadManifest(path)
	default:
		return nil, fmt.Errorf("%w: %q files", ErrUnsupported, ext)
	}
}
