package scene

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"gopkg.in/yaml.v3"
)

// Manifest describes a layered document assembled from image files:
//
//	name: hood.psd
//	width: 2048
//	height: 2048
//	layers:
//	  - name: painting
//	    layers:
//	      - name: hood
//	        image: painting/hood.png
//	        x: 12
//	        y: 40
type Manifest struct {
	Name   string          `yaml:"name"`
	Width  int             `yaml:"width"`
	Height int             `yaml:"height"`
	Layers []ManifestLayer `yaml:"layers"`
}

type ManifestLayer struct {
	Name    string `yaml:"name"`
	Visible *bool  `yaml:"visible"`
	// Opacity in percent, 100 when unset.
	Opacity *int   `yaml:"opacity"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Image   string `yaml:"image"`
	// Group marks an empty group; a layer with children is always one.
	Group  bool            `yaml:"group"`
	Layers []ManifestLayer `yaml:"layers"`
}

// ReadManifest loads a manifest and the images it references, relative to
// the manifest's folder.
func ReadManifest(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	filename := path
	if m.Name != "" {
		filename = filepath.Join(filepath.Dir(path), m.Name)
	}
	dir := filepath.Dir(path)

	layers, err := loadManifestLayers(dir, m.Layers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	bounds := image.Rect(0, 0, m.Width, m.Height)
	if bounds.Empty() {
		bounds = unionRect(layers)
	}
	scene := New(filename, bounds)
	scene.Layers = layers
	return scene, nil
}

func loadManifestLayers(dir string, entries []ManifestLayer) ([]*Layer, error) {
	layers := make([]*Layer, 0, len(entries))
	for _, e := range entries {
		var l *Layer
		if e.Group || len(e.Layers) > 0 {
			children, err := loadManifestLayers(dir, e.Layers)
			if err != nil {
				return nil, err
			}
			l = NewGroup(e.Name, children...)
		} else {
			l = NewLayer(e.Name, nil)
			if e.Image != "" {
				img, err := decodeImage(filepath.Join(dir, filepath.FromSlash(e.Image)))
				if err != nil {
					return nil, fmt.Errorf("layer %q: %w", e.Name, err)
				}
				l.Image = img
				size := img.Bounds().Size()
				l.Rect = image.Rect(e.X, e.Y, e.X+size.X, e.Y+size.Y)
			}
		}
		if e.Visible != nil {
			l.IsVisible = *e.Visible
		}
		if e.Opacity != nil {
			o := min(max(*e.Opacity, 0), 100)
			l.Opacity = uint8(o * 255 / 100)
		}
		layers = append(layers, l)
	}
	return layers, nil
}

func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func unionRect(layers []*Layer) image.Rectangle {
	var r image.Rectangle
	for _, l := range layers {
		r = r.Union(l.Rect)
		r = r.Union(unionRect(l.Children))
	}
	return r
}
