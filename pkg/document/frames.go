package document

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// Frame is the solved geometry of one view, relative to its parent.
type Frame struct {
	Name   string  `json:"name" bson:"name"`
	Parent string  `json:"parent,omitempty" bson:"parent,omitempty"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Rect returns the frame as a layout rectangle.
func (f Frame) Rect() layout.Rect { return layout.R(f.X, f.Y, f.Width, f.Height) }

// Frames exports the frames of root's subtree in preorder.
func Frames(root *layout.Container) []Frame {
	var out []Frame
	root.Tree().Walk(root, func(c *layout.Container) bool {
		r := c.Frame()
		f := Frame{Name: c.Name(), X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
		if p := c.Parent(); p != nil && c != root {
			f.Parent = p.Name()
		}
		out = append(out, f)
		return true
	})
	return out
}

// ApplyFrames writes previously exported frames back onto the named views.
// Unknown names are ignored.
func (b *Built) ApplyFrames(frames []Frame) {
	for _, f := range frames {
		if c, ok := b.Views[f.Name]; ok {
			c.SetFrame(f.Rect())
		}
	}
}

// WriteFrames encodes frames as indented JSON.
func WriteFrames(frames []Frame, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(frames)
}
