package scene

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ddvk/tachie/host"
)

func solid(r image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writeTestPNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func readTestPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestLayerSetLookup(t *testing.T) {
	s := New("doc.psd", image.Rect(0, 0, 1, 1))
	s.Layers = []*Layer{
		NewLayer("painting", nil),
		NewGroup("face", NewGroup("painting")),
	}
	_, err := s.LayerSet("painting")
	require.ErrorIs(t, err, host.ErrLayerSetNotFound)

	set, err := s.LayerSet("face")
	require.NoError(t, err)
	require.Empty(t, set.ArtLayers())
}

func TestCompositeOpacityAndHiddenGroup(t *testing.T) {
	s := New("doc.psd", image.Rect(0, 0, 2, 1))
	half := NewLayer("half", solid(image.Rect(0, 0, 1, 1), color.NRGBA{R: 255, A: 255}))
	half.Opacity = 128
	hidden := NewGroup("hidden", NewLayer("x", solid(image.Rect(1, 0, 2, 1), color.NRGBA{G: 255, A: 255})))
	hidden.IsVisible = false
	s.Layers = []*Layer{half, hidden}

	img := s.Composite()
	c := img.NRGBAAt(0, 0)
	require.Equal(t, uint8(255), c.R)
	require.InDelta(t, 128, int(c.A), 1)
	require.Equal(t, color.NRGBA{}, img.NRGBAAt(1, 0))
}

func TestManifestGroupOpacity(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "red.png"), solid(image.Rect(0, 0, 1, 1), color.NRGBA{R: 255, A: 255}))
	writeTestPNG(t, filepath.Join(dir, "blue.png"), solid(image.Rect(0, 0, 2, 1), color.NRGBA{B: 255, A: 255}))
	manifest := `
width: 2
height: 1
layers:
  - name: painting
    opacity: 50
    layers:
      - name: red
        image: red.png
      - name: blue
        image: blue.png
`
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	img := s.Composite()

	// children are flattened first, blue does not show through red
	c := img.NRGBAAt(0, 0)
	require.InDelta(t, 255, int(c.R), 1)
	require.Equal(t, uint8(0), c.B)
	require.InDelta(t, 127, int(c.A), 1)

	c = img.NRGBAAt(1, 0)
	require.InDelta(t, 255, int(c.B), 1)
	require.InDelta(t, 127, int(c.A), 1)
}

func TestCompositeTransparentGroup(t *testing.T) {
	s := New("doc.psd", image.Rect(0, 0, 1, 1))
	group := NewGroup("g", NewLayer("a", solid(image.Rect(0, 0, 1, 1), color.NRGBA{R: 255, A: 255})))
	group.Opacity = 0
	s.Layers = []*Layer{group}
	require.Equal(t, color.NRGBA{}, s.Composite().NRGBAAt(0, 0))
}

func TestCompositeOffsetImage(t *testing.T) {
	s := New("doc.psd", image.Rect(0, 0, 3, 3))
	// stored at the origin, placed at (2,2)
	l := NewLayer("dot", solid(image.Rect(0, 0, 1, 1), color.NRGBA{B: 255, A: 255}))
	l.Rect = image.Rect(2, 2, 3, 3)
	s.Layers = []*Layer{l}

	img := s.Composite()
	require.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(2, 2))
	require.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))
}

func TestSaveAsLowercaseExtension(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "doc.psd"), image.Rect(0, 0, 2, 2))
	s.Layers = []*Layer{NewLayer("a", solid(image.Rect(0, 0, 2, 2), color.NRGBA{R: 10, G: 20, B: 30, A: 255}))}

	opts := host.DefaultPNGSaveOptions()
	require.NoError(t, s.SaveAs(filepath.Join(dir, "out.PNG"), opts))
	_, err := os.Stat(filepath.Join(dir, "out.png"))
	require.NoError(t, err)

	img := readTestPNG(t, filepath.Join(dir, "out.png"))
	require.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	require.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, color.NRGBAModel.Convert(img.At(1, 1)))
}

func TestPNGCompression(t *testing.T) {
	require.Equal(t, png.NoCompression, pngCompression(0))
	require.Equal(t, png.BestSpeed, pngCompression(2))
	require.Equal(t, png.DefaultCompression, pngCompression(6))
	require.Equal(t, png.BestCompression, pngCompression(9))
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "painting", "hood.png"), solid(image.Rect(0, 0, 2, 2), color.NRGBA{R: 255, A: 255}))
	writeTestPNG(t, filepath.Join(dir, "face", "1.png"), solid(image.Rect(0, 0, 1, 1), color.NRGBA{G: 255, A: 255}))

	manifest := `
name: hood.psd
width: 4
height: 4
layers:
  - name: paintingface
    layers:
      - name: "1"
        image: face/1.png
        x: 3
        y: 3
        visible: false
  - name: painting
    layers:
      - name: hood
        image: painting/hood.png
        x: 1
        y: 1
        opacity: 100
  - name: empty
    group: true
`
	path := filepath.Join(dir, "hood.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, "hood.psd", s.Name())
	require.Equal(t, dir, s.Path())
	require.Equal(t, image.Rect(0, 0, 4, 4), s.Bounds)

	face, err := s.LayerSet("paintingface")
	require.NoError(t, err)
	require.Len(t, face.ArtLayers(), 1)
	require.False(t, face.ArtLayers()[0].Visible())

	empty, err := s.LayerSet("empty")
	require.NoError(t, err)
	require.Empty(t, empty.ArtLayers())

	img := s.Composite()
	require.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(1, 1))
	require.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(2, 2))
	require.Equal(t, color.NRGBA{}, img.NRGBAAt(3, 3))
}

func TestReadManifestBoundsFromLayers(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"), solid(image.Rect(0, 0, 3, 2), color.NRGBA{A: 255}))
	path := filepath.Join(dir, "doc.yml")
	require.NoError(t, os.WriteFile(path, []byte("layers:\n  - name: a\n    image: a.png\n"), 0o644))

	s, err := ReadManifest(path)
	require.NoError(t, err)
	require.Equal(t, "doc.yml", s.Name())
	require.Equal(t, image.Rect(0, 0, 3, 2), s.Bounds)
}

func TestReadManifestMissingImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layers:\n  - name: a\n    image: nope.png\n"), 0o644))

	_, err := ReadManifest(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}
