// Package scene is an in-memory layered document: a tree of groups and pixel
// layers that can be composited and saved as PNG.
package scene

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/ddvk/tachie/host"
)

type Scene struct {
	name   string
	path   string
	Bounds image.Rectangle
	Header Header
	// Layers is the top level of the tree, topmost first.
	Layers []*Layer
}

// New returns an empty scene for the document file at filename.
func New(filename string, bounds image.Rectangle) *Scene {
	return &Scene{
		name:   filepath.Base(filename),
		path:   filepath.Dir(filename),
		Bounds: bounds,
	}
}

func (s *Scene) Name() string {
	return s.name
}

func (s *Scene) Path() string {
	return s.path
}

func (s *Scene) String() string {
	return fmt.Sprintf("Scene %s %dx%d layers:%d", s.name, s.Bounds.Dx(), s.Bounds.Dy(), len(s.Layers))
}

// LayerSet finds a top level group. Nested groups are not searched.
func (s *Scene) LayerSet(name string) (host.LayerSet, error) {
	for _, l := range s.Layers {
		if l.IsGroup && l.name == name {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in %s", host.ErrLayerSetNotFound, name, s.name)
}

// Walk visits every layer depth first, topmost first.
func (s *Scene) Walk(fn func(l *Layer, depth int)) {
	var walk func(layers []*Layer, depth int)
	walk = func(layers []*Layer, depth int) {
		for _, l := range layers {
			fn(l, depth)
			walk(l.Children, depth+1)
		}
	}
	walk(s.Layers, 0)
}

type Layer struct {
	name      string
	IsVisible bool
	IsGroup   bool
	Opacity   uint8
	// Rect is the placement in document coordinates.
	Rect     image.Rectangle
	Image    image.Image
	Children []*Layer
}

// NewLayer returns a visible, opaque pixel layer. img bounds are its placement.
func NewLayer(name string, img image.Image) *Layer {
	l := &Layer{
		name:      name,
		IsVisible: true,
		Opacity:   255,
		Image:     img,
	}
	if img != nil {
		l.Rect = img.Bounds()
	}
	return l
}

// NewGroup returns a visible group holding children, topmost first.
func NewGroup(name string, children ...*Layer) *Layer {
	return &Layer{
		name:      name,
		IsVisible: true,
		IsGroup:   true,
		Opacity:   255,
		Children:  children,
	}
}

func (l *Layer) Name() string {
	return l.name
}

func (l *Layer) Visible() bool {
	return l.IsVisible
}

func (l *Layer) SetVisible(visible bool) {
	l.IsVisible = visible
}

// ArtLayers returns the direct pixel layer children of a group.
func (l *Layer) ArtLayers() []host.Layer {
	var layers []host.Layer
	for _, c := range l.Children {
		if !c.IsGroup {
			layers = append(layers, c)
		}
	}
	return layers
}

func (l *Layer) String() string {
	kind := "layer"
	if l.IsGroup {
		kind = "group"
	}
	return fmt.Sprintf("%s %q visible:%v opacity:%d rect:%v", kind, l.name, l.IsVisible, l.Opacity, l.Rect)
}

// SaveAs writes the visible composite to path as PNG.
func (s *Scene) SaveAs(path string, opts host.PNGSaveOptions) error {
	if opts.LowercaseExtension {
		ext := filepath.Ext(path)
		path = strings.TrimSuffix(path, ext) + strings.ToLower(ext)
	}
	return writePNG(path, s.Composite(), opts.Compression)
}
