package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Document is a view hierarchy plus the constraints between its views.
type Document struct {
	Root        View         `json:"root" yaml:"root" toml:"root"`
	Constraints []Constraint `json:"constraints,omitempty" yaml:"constraints,omitempty" toml:"constraints,omitempty"`
}

// View describes one container.
type View struct {
	Name        string    `json:"name" yaml:"name" toml:"name"`
	Frame       []float64 `json:"frame,omitempty" yaml:"frame,omitempty" toml:"frame,omitempty"`
	Guide       bool      `json:"guide,omitempty" yaml:"guide,omitempty" toml:"guide,omitempty"`
	Intrinsic   []float64 `json:"intrinsic,omitempty" yaml:"intrinsic,omitempty" toml:"intrinsic,omitempty"`
	Baseline    *float64  `json:"baseline,omitempty" yaml:"baseline,omitempty" toml:"baseline,omitempty"`
	Hugging     []any     `json:"hugging,omitempty" yaml:"hugging,omitempty" toml:"hugging,omitempty"`
	Compression []any     `json:"compression,omitempty" yaml:"compression,omitempty" toml:"compression,omitempty"`
	OptOut      []string  `json:"opt_out,omitempty" yaml:"opt_out,omitempty" toml:"opt_out,omitempty"`
	Children    []View    `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// Constraint describes one user constraint.
type Constraint struct {
	Owner      string   `json:"owner,omitempty" yaml:"owner,omitempty" toml:"owner,omitempty"`
	First      string   `json:"first" yaml:"first" toml:"first"`
	Relation   string   `json:"relation" yaml:"relation" toml:"relation"`
	Second     string   `json:"second,omitempty" yaml:"second,omitempty" toml:"second,omitempty"`
	Offset     float64  `json:"offset,omitempty" yaml:"offset,omitempty" toml:"offset,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty" toml:"multiplier,omitempty"`
	Priority   any      `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty"`
	Enabled    *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported document extension: %q", filepath.Ext(path))
}

// Read decodes a document from r.
//
// Read does not validate references; [Build] does. Read does not close r.
func Read(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data, format)
}

// Decode decodes a document from data.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), &doc)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown key %q", undecoded[0].String())
			}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported document format: %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode %s document", format)
	}
	return &doc, nil
}

// Load reads the document at path, choosing the format by extension.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}

// Write encodes doc to w.
func Write(doc *Document, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(doc)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported document format: %q", format)
}

// Hash returns a content hash of doc that is independent of the source
// encoding. Equal documents hash equally.
func Hash(doc *Document) string {
	data, _ := json.Marshal(normalize(doc))
	return cache.Hash(data)
}

// normalize resolves priorities to numbers so that "high" and 750 hash
// equally.
func normalize(doc *Document) *Document {
	out := *doc
	out.Root = normalizeView(doc.Root)
	out.Constraints = make([]Constraint, len(doc.Constraints))
	for i, c := range doc.Constraints {
		if p, err := priorityOf(c.Priority, requiredDefault); err == nil {
			c.Priority = float64(p)
		}
		out.Constraints[i] = c
	}
	return &out
}

func normalizeView(v View) View {
	norm := func(ps []any) []any {
		out := make([]any, len(ps))
		for i, p := range ps {
			out[i] = p
			if q, err := priorityOf(p, 0); err == nil {
				out[i] = float64(q)
			}
		}
		return out
	}
	v.Hugging = norm(v.Hugging)
	v.Compression = norm(v.Compression)
	children := make([]View, len(v.Children))
	for i, c := range v.Children {
		children[i] = normalizeView(c)
	}
	v.Children = children
	return v
}
