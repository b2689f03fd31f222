package infogroup

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// SourceKind identifies where a value comes from.
type SourceKind string

const (
	KindFile     SourceKind = "file"
	KindCommand  SourceKind = "command"
	KindConstant SourceKind = "constant"
)

// FileSource reads a value from a file.
//
//	infogroup.File("/proc/meminfo").Match(`MemTotal:\s+(\d+)`).Convert(infogroup.KiB)
type FileSource struct {
	Path      string
	Pattern   string
	Converter Converter

	// OnlyExtended sources are skipped unless the group is extended.
	OnlyExtended bool
}

// File declares a file source whose trimmed content is the value.
func File(path string) FileSource {
	return FileSource{Path: path}
}

// Match sets the pattern whose first capture group becomes the value.
func (s FileSource) Match(pattern string) FileSource {
	s.Pattern = pattern
	return s
}

// Convert sets the converter applied to the captured text.
func (s FileSource) Convert(c Converter) FileSource {
	s.Converter = c
	return s
}

// Extended marks the source as collected only for extended groups.
func (s FileSource) Extended() FileSource {
	s.OnlyExtended = true
	return s
}

func (s FileSource) descriptor(key string) (descriptor, error) {
	if strings.TrimSpace(s.Path) == "" {
		return descriptor{}, fmt.Errorf("file source has no path")
	}
	re, err := compileExtraction(s.Pattern, s.Converter)
	if err != nil {
		return descriptor{}, err
	}
	return descriptor{
		key:     key,
		kind:    KindFile,
		path:    s.Path,
		re:      re,
		convert: s.Converter,
	}, nil
}

// CommandSource reads a value from the standard output of a command.
// Arguments are passed as discrete tokens; no shell is involved.
type CommandSource struct {
	Name      string
	Args      []string
	Pattern   string
	Converter Converter

	// OnlyExtended sources are skipped unless the group is extended.
	OnlyExtended bool
}

// Command declares a command source whose trimmed stdout is the value.
func Command(name string, args ...string) CommandSource {
	return CommandSource{Name: name, Args: slices.Clone(args)}
}

// Match sets the pattern whose first capture group becomes the value.
func (s CommandSource) Match(pattern string) CommandSource {
	s.Pattern = pattern
	return s
}

// Convert sets the converter applied to the captured text.
func (s CommandSource) Convert(c Converter) CommandSource {
	s.Converter = c
	return s
}

// Extended marks the source as collected only for extended groups.
func (s CommandSource) Extended() CommandSource {
	s.OnlyExtended = true
	return s
}

// String renders the command line for logs.
func (s CommandSource) String() string {
	return strings.Join(append([]string{s.Name}, s.Args...), " ")
}

func (s CommandSource) descriptor(key string) (descriptor, error) {
	if strings.TrimSpace(s.Name) == "" {
		return descriptor{}, fmt.Errorf("command source has no executable")
	}
	re, err := compileExtraction(s.Pattern, s.Converter)
	if err != nil {
		return descriptor{}, err
	}
	return descriptor{
		key:     key,
		kind:    KindCommand,
		name:    s.Name,
		args:    slices.Clone(s.Args),
		re:      re,
		convert: s.Converter,
	}, nil
}

func compileExtraction(pattern string, conv Converter) (*regexp.Regexp, error) {
	if pattern == "" {
		if conv != nil {
			return nil, fmt.Errorf("converter requires a pattern")
		}
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

// descriptor is the normalized form of one source, built by Generate.
type descriptor struct {
	key     string
	kind    SourceKind
	path    string
	name    string
	args    []string
	re      *regexp.Regexp
	convert Converter
	value   any
}
