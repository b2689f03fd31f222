package infogroup

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Converter turns the text captured by a pattern into a typed value.
type Converter func(string) (any, error)

// Extract produces the stored value for one source.
//
// Without a pattern the raw text minus trailing newlines is the value. With a pattern, the
// first capture group of the first match is the candidate (the whole match
// when the pattern has no group); no match yields ErrExtractionMismatch.
// The converter, if any, only ever sees the captured candidate.
func Extract(raw string, re *regexp.Regexp, conv Converter) (any, error) {
	if re == nil {
		if conv != nil {
			return nil, fmt.Errorf("%w: converter requires a pattern", ErrConfiguration)
		}
		return strings.TrimRight(raw, "\r\n"), nil
	}

	m := re.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrExtractionMismatch, re.String())
	}

	candidate := m[0]
	if len(m) > 1 {
		candidate = m[1]
	}

	if conv == nil {
		return candidate, nil
	}

	v, err := conv(candidate)
	if err != nil {
		return nil, &ConversionError{Input: candidate, Err: err}
	}
	return v, nil
}

// Int parses a base-10 integer.
func Int(s string) (any, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// Float parses a 64-bit float.
func Float(s string) (any, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Bool parses strconv booleans plus yes/no, on/off and enabled/disabled.
func Bool(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on", "enabled", "y":
		return true, nil
	case "no", "off", "disabled", "n":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

// Bytes parses human readable sizes such as "16 GiB" or "512M" into bytes.
func Bytes(s string) (any, error) {
	return humanize.ParseBytes(strings.TrimSpace(s))
}

// KiB parses an integer number of kibibytes, as found in /proc/meminfo,
// into bytes.
func KiB(s string) (any, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, err
	}
	return n * 1024, nil
}

// Fields splits the text on whitespace.
func Fields(s string) (any, error) {
	return strings.Fields(s), nil
}

// Trim returns the text without surrounding whitespace.
func Trim(s string) (any, error) {
	return strings.TrimSpace(s), nil
}

var converters = map[string]Converter{
	"int":    Int,
	"float":  Float,
	"bool":   Bool,
	"bytes":  Bytes,
	"kib":    KiB,
	"fields": Fields,
	"trim":   Trim,
	"string": Trim,
}

// ErrUnknownConverter is returned by ConverterByName for unregistered names.
var ErrUnknownConverter = errors.New("unknown converter")

// ConverterByName resolves a built-in converter by its lower-case name.
func ConverterByName(name string) (Converter, error) {
	c, ok := converters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConverter, name)
	}
	return c, nil
}

// ConverterNames lists the names accepted by ConverterByName.
func ConverterNames() []string {
	return []string{"bool", "bytes", "fields", "float", "int", "kib", "string", "trim"}
}
