package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/machinestate/pkg/k8s/client"
)

// Reader decodes a single JSON or YAML document.
type Reader struct {
	format Format
	input  io.Reader
	closer io.Closer
}

// NewReader returns a Reader decoding r. Only JSON and YAML can be read.
func NewReader(format Format, r io.Reader) (*Reader, error) {
	if format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
	return &Reader{format: format, input: r}, nil
}

// NewFileReader opens path for decoding.
func NewFileReader(format Format, path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	r, err := NewReader(format, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Deserialize decodes the document into v.
func (r *Reader) Deserialize(v any) error {
	switch r.format {
	case FormatYAML:
		if err := yaml.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode json: %w", err)
		}
	}
	return nil
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// FromFile decodes the document at path into a new T. path may be a file
// or a cm://namespace/name URI.
func FromFile[T any](ctx context.Context, path string) (*T, error) {
	return FromFileWithClient[T](ctx, path, nil)
}

// FromFileWithClient is FromFile with an explicit Kubernetes client for
// ConfigMap URIs. A nil client uses the shared default client.
func FromFileWithClient[T any](ctx context.Context, path string, cs kubernetes.Interface) (*T, error) {
	var (
		r   *Reader
		err error
	)

	if strings.HasPrefix(path, ConfigMapURIScheme) {
		namespace, name, perr := ParseConfigMapURI(path)
		if perr != nil {
			return nil, perr
		}
		if cs == nil {
			if cs, _, err = client.GetKubeClient(); err != nil {
				return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
			}
		}
		data, format, rerr := readConfigMap(ctx, cs, namespace, name)
		if rerr != nil {
			return nil, rerr
		}
		r, err = NewReader(format, bytes.NewReader(data))
	} else {
		r, err = NewFileReader(FormatFromPath(path), path)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var v T
	if err := r.Deserialize(&v); err != nil {
		return nil, fmt.Errorf("failed to deserialize %s: %w", path, err)
	}
	return &v, nil
}
