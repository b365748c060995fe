package scene

import (
	"github.com/sirupsen/logrus"
)

// SceneTree rebuilds the group hierarchy from a flat, bottom first list of
// layer records. A bounding divider opens a group, the folder record that
// follows its contents closes it.
type SceneTree struct {
	stack [][]*Layer
}

func NewTree() *SceneTree {
	return &SceneTree{
		stack: [][]*Layer{nil},
	}
}

func (t *SceneTree) top() int {
	return len(t.stack) - 1
}

// Open starts collecting the contents of a group.
func (t *SceneTree) Open() {
	t.stack = append(t.stack, nil)
}

// Close attaches the collected contents to group and adds it to its parent.
func (t *SceneTree) Close(group *Layer) {
	group.IsGroup = true
	if t.top() == 0 {
		logrus.Warn("group without divider: ", group.name)
	} else {
		group.Children = reversed(t.stack[t.top()])
		t.stack = t.stack[:t.top()]
	}
	t.Add(group)
}

func (t *SceneTree) Add(l *Layer) {
	t.stack[t.top()] = append(t.stack[t.top()], l)
}

// Root returns the top level, topmost first. Unclosed groups are flattened
// into their parent.
func (t *SceneTree) Root() []*Layer {
	for t.top() > 0 {
		logrus.Warn("unclosed group, flattening ", len(t.stack[t.top()]), " layers")
		orphans := t.stack[t.top()]
		t.stack = t.stack[:t.top()]
		t.stack[t.top()] = append(t.stack[t.top()], orphans...)
	}
	return reversed(t.stack[0])
}

func reversed(layers []*Layer) []*Layer {
	out := make([]*Layer, len(layers))
	for i, l := range layers {
		out[len(layers)-1-i] = l
	}
	return out
}
