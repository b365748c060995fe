package export

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ddvk/tachie/scene"
	"github.com/ddvk/tachie/workspace"
)

func fill(r image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(r)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func pixel(t *testing.T, path string, x, y int) color.NRGBA {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestExportSceneDocument(t *testing.T) {
	dir := t.TempDir()
	red := color.NRGBA{R: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	doc := scene.New(filepath.Join(dir, "hood.psd"), image.Rect(0, 0, 4, 4))
	face := scene.NewGroup("paintingface",
		scene.NewLayer("1", fill(image.Rect(0, 0, 1, 1), blue)),
	)
	painting := scene.NewGroup("painting",
		scene.NewLayer("hood_2", fill(image.Rect(0, 0, 4, 4), green)),
		scene.NewLayer("hood", fill(image.Rect(0, 0, 4, 4), red)),
	)
	doc.Layers = []*scene.Layer{face, painting}

	ws := workspace.New(nil)
	ws.Add(doc)
	report, err := New(ws, DefaultSettings()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Files, 3)

	require.Equal(t, red, pixel(t, filepath.Join(dir, "hood.png"), 2, 2))
	require.Equal(t, green, pixel(t, filepath.Join(dir, "hood_2.png"), 2, 2))
	require.Equal(t, blue, pixel(t, filepath.Join(dir, "face", "1.png"), 0, 0))
	require.Equal(t, color.NRGBA{}, pixel(t, filepath.Join(dir, "face", "1.png"), 2, 2))

	require.True(t, painting.Children[0].Visible())
	require.True(t, painting.Children[1].Visible())
	require.False(t, face.Children[0].Visible())
}
