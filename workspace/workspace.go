// Package workspace is the in-process host: the set of open documents and
// the alert channel back to the user.
package workspace

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ddvk/tachie/host"
	"github.com/ddvk/tachie/scene"
)

// Workspace implements host.Host. The most recently opened document is active.
type Workspace struct {
	documents []host.Document
	active    int
	alerts    io.Writer
}

func New(alerts io.Writer) *Workspace {
	if alerts == nil {
		alerts = os.Stderr
	}
	return &Workspace{
		active: -1,
		alerts: alerts,
	}
}

// Open loads the document at path and makes it active.
func (w *Workspace) Open(path string) (host.Document, error) {
	doc, err := scene.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	log.WithField("doc", doc.Name()).Debug("opened ", doc)
	w.Add(doc)
	return doc, nil
}

// Add registers an already loaded document and makes it active.
func (w *Workspace) Add(doc host.Document) {
	w.documents = append(w.documents, doc)
	w.active = len(w.documents) - 1
}

// Documents lists the open documents in the order they were opened.
func (w *Workspace) Documents() []host.Document {
	return w.documents
}

// Activate switches the active document.
func (w *Workspace) Activate(i int) error {
	if i < 0 || i >= len(w.documents) {
		return fmt.Errorf("document %d: out of range [0,%d)", i, len(w.documents))
	}
	w.active = i
	return nil
}

func (w *Workspace) ActiveDocument() (host.Document, error) {
	if w.active < 0 {
		return nil, host.ErrNoDocument
	}
	return w.documents[w.active], nil
}

// Alert shows message to the user on the alert writer only.
func (w *Workspace) Alert(message string) {
	fmt.Fprintln(w.alerts, message)
}
