package scene

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

const outputFileMode = 0o644

// Composite flattens the visible layers onto a transparent canvas the size of
// the document. Hidden groups hide their whole subtree.
func (s *Scene) Composite() *image.NRGBA {
	canvas := image.NewNRGBA(s.Bounds)
	compositeLayers(canvas, s.Layers)
	return canvas
}

func compositeLayers(dst draw.Image, layers []*Layer) {
	// stored topmost first, painted bottom up
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		if !l.IsVisible || l.Opacity == 0 {
			continue
		}
		if l.IsGroup {
			compositeGroup(dst, l)
			continue
		}
		if l.Image == nil {
			continue
		}
		r := l.Rect.Intersect(dst.Bounds())
		if r.Empty() {
			continue
		}
		// the image may be stored at the origin or already at its placement
		sp := l.Image.Bounds().Min.Add(r.Min.Sub(l.Rect.Min))
		if l.Opacity == 255 {
			draw.Draw(dst, r, l.Image, sp, draw.Over)
			continue
		}
		mask := image.NewUniform(color.Alpha{A: l.Opacity})
		draw.DrawMask(dst, r, l.Image, sp, mask, image.Point{}, draw.Over)
	}
}

// compositeGroup flattens the children on their own before applying the
// group opacity, so overlapping children do not show through each other.
func compositeGroup(dst draw.Image, group *Layer) {
	if group.Opacity == 255 {
		compositeLayers(dst, group.Children)
		return
	}
	scratch := image.NewNRGBA(dst.Bounds())
	compositeLayers(scratch, group.Children)
	mask := image.NewUniform(color.Alpha{A: group.Opacity})
	draw.DrawMask(dst, dst.Bounds(), scratch, scratch.Bounds().Min, mask, image.Point{}, draw.Over)
}

func pngCompression(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	}
	return png.BestCompression
}

func writePNG(path string, img image.Image, compression int) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFileMode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	encoder := png.Encoder{CompressionLevel: pngCompression(compression)}
	if err = encoder.Encode(file, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
