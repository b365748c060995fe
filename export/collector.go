package export

import (
	"regexp"
	"strings"

	"github.com/ddvk/tachie/host"
)

// Matcher selects export candidates by layer name.
type Matcher func(name string) bool

var faceName = regexp.MustCompile(`^(0|([1-9][0-9]*))$`)

// PaintingMatcher matches layers named after the document, e.g. hood, hood_2.
func PaintingMatcher(base string) Matcher {
	return func(name string) bool {
		return strings.HasPrefix(name, base)
	}
}

// FaceMatcher matches expression layers: a non-negative integer without
// leading zeros.
func FaceMatcher(name string) bool {
	return faceName.MatchString(name)
}

// Collect returns the art layers of set accepted by match, in document order,
// and hides each of them.
func Collect(set host.LayerSet, match Matcher) []host.Layer {
	var layers []host.Layer
	for _, layer := range set.ArtLayers() {
		if match(layer.Name()) {
			layers = append(layers, layer)
			layer.SetVisible(false)
		}
	}
	return layers
}

// BaseName is the document name up to its first dot.
func BaseName(documentName string) string {
	base, _, _ := strings.Cut(documentName, ".")
	return base
}
