package workspace

import (
	"bytes"
	"image"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/ddvk/tachie/host"
	"github.com/ddvk/tachie/scene"
)

func TestEmptyWorkspace(t *testing.T) {
	w := New(&bytes.Buffer{})
	_, err := w.ActiveDocument()
	require.ErrorIs(t, err, host.ErrNoDocument)
	require.Error(t, w.Activate(0))
}

func TestLastOpenedIsActive(t *testing.T) {
	w := New(nil)
	a := scene.New("a.psd", image.Rect(0, 0, 1, 1))
	b := scene.New("b.psd", image.Rect(0, 0, 1, 1))
	w.Add(a)
	w.Add(b)

	doc, err := w.ActiveDocument()
	require.NoError(t, err)
	require.Equal(t, "b.psd", doc.Name())

	require.NoError(t, w.Activate(0))
	doc, err = w.ActiveDocument()
	require.NoError(t, err)
	require.Equal(t, "a.psd", doc.Name())
	require.Len(t, w.Documents(), 2)
}

func TestOpenMissingFile(t *testing.T) {
	w := New(nil)
	_, err := w.Open(filepath.Join(t.TempDir(), "none.psd"))
	require.Error(t, err)
	_, err = w.ActiveDocument()
	require.ErrorIs(t, err, host.ErrNoDocument)
}

func TestAlertWritesMessageOnce(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	var buf bytes.Buffer
	New(&buf).Alert("No documents available")
	require.Equal(t, "No documents available\n", buf.String())
	require.Empty(t, hook.AllEntries())
}
