package infogroup

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		pattern string
		conv    Converter
		want    any
		wantErr error
	}{
		{
			name: "no pattern trims trailing newlines",
			raw:  "value\r\n\n",
			want: "value",
		},
		{
			name: "no pattern keeps indentation",
			raw:  "  indented value\n",
			want: "  indented value",
		},
		{
			name:    "first capture group",
			raw:     "x42\n",
			pattern: `x(\d+)`,
			want:    "42",
		},
		{
			name:    "first match only",
			raw:     "a1 a2 a3",
			pattern: `a(\d)`,
			want:    "1",
		},
		{
			name:    "whole match without group",
			raw:     "model: abc-123 rev",
			pattern: `abc-\d+`,
			want:    "abc-123",
		},
		{
			name:    "convert captured text",
			raw:     "x42\n",
			pattern: `x(\d+)`,
			conv:    Int,
			want:    42,
		},
		{
			name:    "multiline",
			raw:     "MemTotal:       16384 kB\nMemFree:         2048 kB\n",
			pattern: `MemFree:\s+(\d+) kB`,
			conv:    KiB,
			want:    uint64(2048 * 1024),
		},
		{
			name:    "no match",
			raw:     "hello",
			pattern: `x(\d+)`,
			wantErr: ErrExtractionMismatch,
		},
		{
			name:    "converter rejects",
			raw:     "xab",
			pattern: `x(\w+)`,
			conv:    Int,
			wantErr: ErrConversion,
		},
		{
			name:    "converter without pattern",
			raw:     "42",
			conv:    Int,
			wantErr: ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var re *regexp.Regexp
			if tt.pattern != "" {
				re = regexp.MustCompile(tt.pattern)
			}

			got, err := Extract(tt.raw, re, tt.conv)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_ConversionErrorKeepsInput(t *testing.T) {
	_, err := Extract("value=abc", regexp.MustCompile(`value=(\w+)`), Float)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "abc", convErr.Input)
}

func TestConverters(t *testing.T) {
	tests := []struct {
		name    string
		conv    Converter
		in      string
		want    any
		wantErr bool
	}{
		{name: "int", conv: Int, in: " 7 ", want: 7},
		{name: "int negative", conv: Int, in: "-3", want: -3},
		{name: "int invalid", conv: Int, in: "7.5", wantErr: true},
		{name: "float", conv: Float, in: "1234.56", want: 1234.56},
		{name: "float invalid", conv: Float, in: "abc", wantErr: true},
		{name: "bool true", conv: Bool, in: "true", want: true},
		{name: "bool yes", conv: Bool, in: "Yes", want: true},
		{name: "bool enabled", conv: Bool, in: "enabled", want: true},
		{name: "bool off", conv: Bool, in: "off", want: false},
		{name: "bool zero", conv: Bool, in: "0", want: false},
		{name: "bool invalid", conv: Bool, in: "maybe", wantErr: true},
		{name: "bytes GiB", conv: Bytes, in: "2 GiB", want: uint64(2 << 30)},
		{name: "bytes plain", conv: Bytes, in: "512", want: uint64(512)},
		{name: "bytes invalid", conv: Bytes, in: "lots", wantErr: true},
		{name: "kib", conv: KiB, in: "4", want: uint64(4096)},
		{name: "kib invalid", conv: KiB, in: "-4", wantErr: true},
		{name: "fields", conv: Fields, in: " fpu  vme sse ", want: []string{"fpu", "vme", "sse"}},
		{name: "trim", conv: Trim, in: "\tx \n", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.conv(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConverterByName(t *testing.T) {
	for _, name := range ConverterNames() {
		t.Run(name, func(t *testing.T) {
			c, err := ConverterByName(name)
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}

	c, err := ConverterByName(" INT ")
	require.NoError(t, err)
	v, err := c("12")
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	_, err = ConverterByName("hex")
	assert.ErrorIs(t, err, ErrUnknownConverter)
}
