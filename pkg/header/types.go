// Package header defines the Kubernetes-style envelope shared by every
// document machinestate produces.
package header

import (
	"time"
)

const (
	// APIDomain is the API group of machinestate documents.
	APIDomain = "machinestate.nvidia.com"

	// APIVersionV1Alpha1 is the current document schema version.
	APIVersionV1Alpha1 = "v1alpha1"

	// TimestampKey is the metadata key holding the creation time.
	TimestampKey = "timestamp"
)

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind sets the document kind, e.g. "Snapshot".
func WithKind(kind string) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion sets the document API version.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// New creates a Header with an initialized Metadata map.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Header contains the kind, version and metadata of a document.
type Header struct {
	// Kind is the type of the document.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the document.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains key-value pairs describing the document.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Set initializes the header for kind with the current API version and a
// fresh timestamp. Existing metadata is discarded.
func (h *Header) Set(kind string) {
	h.Kind = kind
	h.APIVersion = APIDomain + "/" + APIVersionV1Alpha1
	h.Metadata = map[string]string{
		TimestampKey: time.Now().UTC().Format(time.RFC3339),
	}
}
