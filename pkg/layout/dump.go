package layout

import (
	"encoding/json"
	"io"
)

// dumpLine is one JSON line of a debug dump.
type dumpLine struct {
	Kind      string      `json:"kind"`
	Entry     *BatchEntry `json:"entry,omitempty"`
	Container string      `json:"container,omitempty"`
	Variable  string      `json:"variable,omitempty"`
	Value     float64     `json:"value"`
	Anchors   []string    `json:"referenced,omitempty"`
}

// Dump writes the batch of the last pass applied through cache followed by
// every variable of root's subtree, one JSON object per line. It is meant
// for offline inspection and has no effect on layout.
func (e *Engine) Dump(w io.Writer, root *Container, cache *Cache) error {
	enc := json.NewEncoder(w)
	if cache != nil {
		for _, entry := range cache.last.entries() {
			if err := enc.Encode(dumpLine{Kind: "op", Entry: &entry}); err != nil {
				return err
			}
		}
	}
	var err error
	walk(root, func(c *Container) bool {
		if err != nil {
			return false
		}
		var refs []string
		for k := range numAnchorKinds {
			if c.HasConstraintReferencing(AnchorKind(k)) {
				refs = append(refs, AnchorKind(k).String())
			}
		}
		if err = enc.Encode(dumpLine{Kind: "container", Container: c.name, Anchors: refs}); err != nil {
			return false
		}
		for _, v := range c.vars.all() {
			if err = enc.Encode(dumpLine{Kind: "variable", Container: c.name, Variable: v.Name(), Value: v.Value()}); err != nil {
				return false
			}
		}
		return true
	})
	return err
}
