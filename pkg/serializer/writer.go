// Package serializer encodes snapshots as JSON, YAML or a flat table and
// writes them to stdout, a file or a Kubernetes ConfigMap.
//
// Destinations are selected by path:
//
//	""  or "-"        stdout
//	cm://ns/name      ConfigMap "name" in namespace "ns"
//	anything else     a file, created or truncated
//
// Usage:
//
//	ser, err := serializer.NewFileWriterOrStdout(serializer.FormatYAML, output)
//	if err != nil {
//	    return err
//	}
//	defer ser.Close()
//	return ser.Serialize(ctx, snapshot)
package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Serializer writes a value to its destination.
type Serializer interface {
	Serialize(ctx context.Context, v any) error
	Close() error
}

// Closer is implemented by serializers holding resources.
type Closer interface {
	Close() error
}

// Writer serializes values to an io.Writer.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer

	closeOnce sync.Once
	closeErr  error
}

// NewWriter returns a Writer encoding to w. Unknown formats fall back to JSON;
// a nil w writes to stdout.
func NewWriter(format Format, w io.Writer) *Writer {
	if format.IsUnknown() {
		slog.Warn("unknown output format, using json", slog.String("format", string(format)))
		format = FormatJSON
	}
	if w == nil {
		w = os.Stdout
	}
	return &Writer{format: format, output: w}
}

// NewStdoutWriter returns a Writer encoding to stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout returns a serializer for path: stdout for "" and
// "-", a ConfigMap writer for cm:// URIs, otherwise a file writer.
func NewFileWriterOrStdout(format Format, path string) (Serializer, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == StdoutURI {
		return NewStdoutWriter(format), nil
	}

	if strings.HasPrefix(path, ConfigMapURIScheme) {
		namespace, name, err := ParseConfigMapURI(path)
		if err != nil {
			return nil, err
		}
		return NewConfigMapWriter(namespace, name, format), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	w := NewWriter(format, f)
	w.closer = f
	return w, nil
}

// Serialize encodes v in the writer's format.
func (w *Writer) Serialize(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Marshal(w.format, v)
	if err != nil {
		return err
	}

	if _, err := w.output.Write(data); err != nil {
		return fmt.Errorf("failed to write %s output: %w", w.format, err)
	}
	return nil
}

// Close closes the underlying file, if any. It is safe to call repeatedly.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		if w.closer != nil {
			w.closeErr = w.closer.Close()
		}
	})
	return w.closeErr
}

// Marshal encodes v in the given format.
func Marshal(format Format, v any) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTable:
		return marshalTable(v)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize to json: %w", err)
		}
		return append(data, '\n'), nil
	}
}
