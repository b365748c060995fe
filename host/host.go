// Package host describes the narrow surface the exporter needs from an image
// editor: the active document, its layer groups, layer visibility and a
// save-as-PNG routine.
package host

import "errors"

var ErrNoDocument = errors.New("no documents available")
var ErrLayerSetNotFound = errors.New("layer set not found")

// Host is the application holding open documents.
type Host interface {
	// ActiveDocument returns ErrNoDocument when nothing is open.
	ActiveDocument() (Document, error)
	// Alert shows a blocking message to the user.
	Alert(message string)
}

type Document interface {
	// Name is the file name including its extension.
	Name() string
	// Path is the folder holding the document.
	Path() string
	// LayerSet looks up a top level group by exact name.
	LayerSet(name string) (LayerSet, error)
	// SaveAs writes the visible composite of the document to path.
	SaveAs(path string, opts PNGSaveOptions) error
}

type LayerSet interface {
	Name() string
	// ArtLayers lists the direct non-group children, topmost first.
	ArtLayers() []Layer
}

type Layer interface {
	Name() string
	Visible() bool
	SetVisible(visible bool)
}

// PNGSaveOptions mirrors the editor's PNG save dialog.
type PNGSaveOptions struct {
	// Compression 0 (none) to 9 (smallest).
	Compression        int
	LowercaseExtension bool
}

const DefaultCompression = 6

func DefaultPNGSaveOptions() PNGSaveOptions {
	return PNGSaveOptions{
		Compression:        DefaultCompression,
		LowercaseExtension: true,
	}
}
