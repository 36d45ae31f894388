// Package document reads declarative layout documents and builds view
// hierarchies from them.
//
// # Format
//
// A document has a root view and a list of constraints. JSON, TOML and
// YAML encodings share one schema:
//
//	{
//	  "root": {
//	    "name": "window",
//	    "frame": [0, 0, 400, 300],
//	    "children": [
//	      {"name": "title", "intrinsic": [120, 20], "baseline": 16},
//	      {"name": "body"}
//	    ]
//	  },
//	  "constraints": [
//	    {"first": "title.left", "relation": "==", "second": "window.left", "offset": 20},
//	    {"first": "body.width", "relation": ">=", "offset": 100, "priority": "high"}
//	  ]
//	}
//
// # View Fields
//
//   - name: unique identifier (letters, digits, '_' and '-')
//   - frame: [x, y, width, height] relative to the parent
//   - guide: a layout guide (no children, never drawn)
//   - intrinsic: [width, height]; a negative component means "no metric"
//   - baseline: distance from the top to the first baseline
//   - hugging, compression: [horizontal, vertical] priorities
//   - opt_out: any of "left", "top", "width", "height"
//
// # Constraint Fields
//
// first and second are "view.kind" references; kind is one of width,
// height, left, top, right, bottom, centerX, centerY, firstBaseline. A
// constraint without second compares first to the constant offset.
// multiplier defaults to 1, priority to required (a number or one of the
// tier names required, high, medium, low, very_low, lowest) and enabled
// to true. owner, when given, must name the nearest common ancestor of
// the referenced views.
//
// Every validation failure is an errors.ErrCodeInvalidDocument error.
package document
