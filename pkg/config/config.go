// Package config loads group definitions from YAML files.
//
// A definitions file declares additional groups next to the built-in
// collectors:
//
//	groups:
//	  - name: custom
//	    files:
//	      hostname: { path: /etc/hostname }
//	    commands:
//	      kernel: { command: [uname, -r], match: '^(\d+\.\d+)', convert: float }
//	    constants:
//	      site: lab-1
//	    sensitive: [hostname]
//	    children:
//	      - name: nested
//	        constants: { rack: r12 }
//
// Converter names are those accepted by infogroup.ConverterByName.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

// EnvConfig names the environment variable holding the default definitions path.
const EnvConfig = "MACHINESTATE_CONFIG"

// File declares a file source.
type File struct {
	Path     string `json:"path" yaml:"path"`
	Match    string `json:"match,omitempty" yaml:"match,omitempty"`
	Convert  string `json:"convert,omitempty" yaml:"convert,omitempty"`
	Extended bool   `json:"extended,omitempty" yaml:"extended,omitempty"`
}

// Command declares a command source. Command holds the executable followed
// by its arguments.
type Command struct {
	Command  []string `json:"command" yaml:"command"`
	Match    string   `json:"match,omitempty" yaml:"match,omitempty"`
	Convert  string   `json:"convert,omitempty" yaml:"convert,omitempty"`
	Extended bool     `json:"extended,omitempty" yaml:"extended,omitempty"`
}

// Definition declares one group and its children.
type Definition struct {
	Name      string             `json:"name,omitempty" yaml:"name,omitempty"`
	Extended  bool               `json:"extended,omitempty" yaml:"extended,omitempty"`
	Files     map[string]File    `json:"files,omitempty" yaml:"files,omitempty"`
	Commands  map[string]Command `json:"commands,omitempty" yaml:"commands,omitempty"`
	Constants map[string]any     `json:"constants,omitempty" yaml:"constants,omitempty"`
	Sensitive []string           `json:"sensitive,omitempty" yaml:"sensitive,omitempty"`
	Children  []Definition       `json:"children,omitempty" yaml:"children,omitempty"`
}

type document struct {
	Groups []Definition `yaml:"groups"`
}

// PathFromEnv returns the definitions path from MACHINESTATE_CONFIG.
func PathFromEnv() string {
	return strings.TrimSpace(os.Getenv(EnvConfig))
}

// Load reads and parses the definitions file at path.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file %s: %w", path, err)
	}

	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse definitions file %s: %w", path, err)
	}
	return defs, nil
}

// Parse decodes a definitions document. Unknown fields are rejected.
func Parse(data []byte) ([]Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return doc.Groups, nil
}

// Build turns the definition into a group, applying opts to it and to every
// child. A definition marked extended stays extended regardless of opts.
func (d Definition) Build(opts ...infogroup.Option) (*infogroup.Group, error) {
	g := infogroup.New(append([]infogroup.Option{infogroup.WithName(d.Name)}, opts...)...)
	if d.Extended {
		g.Extended = true
	}
	label := d.Name
	if label == "" {
		label = "untitled"
	}

	for key, f := range d.Files {
		src := infogroup.File(f.Path).Match(f.Match)
		conv, err := converter(f.Convert)
		if err != nil {
			return nil, &infogroup.ConfigurationError{Group: label, Key: key, Reason: err.Error()}
		}
		if conv != nil {
			src = src.Convert(conv)
		}
		if f.Extended {
			src = src.Extended()
		}
		g.Files[key] = src
	}

	for key, c := range d.Commands {
		if len(c.Command) == 0 {
			return nil, &infogroup.ConfigurationError{Group: label, Key: key, Reason: "command is empty"}
		}
		src := infogroup.Command(c.Command[0], c.Command[1:]...).Match(c.Match)
		conv, err := converter(c.Convert)
		if err != nil {
			return nil, &infogroup.ConfigurationError{Group: label, Key: key, Reason: err.Error()}
		}
		if conv != nil {
			src = src.Convert(conv)
		}
		if c.Extended {
			src = src.Extended()
		}
		g.Commands[key] = src
	}

	for key, v := range d.Constants {
		g.Constants[key] = v
	}
	g.Sensitive = append(g.Sensitive, d.Sensitive...)

	for i, cd := range d.Children {
		child, err := cd.Build(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to build child %d of %q: %w", i, label, err)
		}
		g.AddChild(child)
	}

	return g, nil
}

// BuildAll builds every definition.
func BuildAll(defs []Definition, opts ...infogroup.Option) ([]*infogroup.Group, error) {
	groups := make([]*infogroup.Group, 0, len(defs))
	for _, d := range defs {
		g, err := d.Build(opts...)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func converter(name string) (infogroup.Converter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	return infogroup.ConverterByName(name)
}
