// Package render turns an extracted field mapping into a textual document.
package render

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/zachfi/icysnap/pkg/icy"
)

// A Renderer writes one field mapping as a complete document, preserving
// key order.
type Renderer interface {
	Render(w io.Writer, fields icy.Fields) error
}

// New returns the renderer registered under name.
func New(name string) (Renderer, error) {
	switch name {
	case "yaml":
		return yamlRenderer{}, nil
	case "json":
		return jsonRenderer{}, nil
	default:
		return nil, errors.Errorf("unknown output format %q", name)
	}
}

// Names lists the supported format names, for usage text.
func Names() []string {
	return []string{"yaml", "json"}
}

type yamlRenderer struct{}

func (yamlRenderer) Render(w io.Writer, fields icy.Fields) error {
	// MapSlice keeps the encounter order a plain map would lose.
	doc := make(yaml.MapSlice, 0, len(fields))
	for _, f := range fields {
		doc = append(doc, yaml.MapItem{Key: f.Key, Value: f.Value})
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal yaml")
	}

	_, err = w.Write(out)
	return err
}

type jsonRenderer struct{}

// Render assembles the object by hand because encoding/json sorts map keys.
// Individual keys and values still go through json.Marshal for escaping.
func (jsonRenderer) Render(w io.Writer, fields icy.Fields) error {
	var buf bytes.Buffer

	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.Key)
		if err != nil {
			return errors.Wrap(err, "failed to marshal json key")
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return errors.Wrap(err, "failed to marshal json value")
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}
