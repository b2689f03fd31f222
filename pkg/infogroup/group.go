package infogroup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/NVIDIA/machinestate/pkg/defaults"
	"github.com/NVIDIA/machinestate/pkg/measurement"
)

// State is the lifecycle state of a Group.
type State int

const (
	StateUninitialized State = iota
	StateGenerated
	StateUpdated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateGenerated:
		return "generated"
	case StateUpdated:
		return "updated"
	default:
		return "uninitialized"
	}
}

// Option is a functional option for configuring Group instances.
type Option func(*Group)

// WithName sets the group name. Named children are nested under it.
func WithName(name string) Option {
	return func(g *Group) {
		g.Name = name
	}
}

// WithExtended includes sources marked as extended.
func WithExtended(extended bool) Option {
	return func(g *Group) {
		g.Extended = extended
	}
}

// WithAnon omits keys matching the group's Sensitive patterns from Get.
func WithAnon(anon bool) Option {
	return func(g *Group) {
		g.Anon = anon
	}
}

// WithExecutor sets the executor used for command sources.
func WithExecutor(executor CommandExecutor) Option {
	return func(g *Group) {
		g.executor = executor
	}
}

// WithLogger sets the logger. slog.Default is used when unset.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Group) {
		g.logger = logger
	}
}

// WithRegistry registers the group in r instead of DefaultRegistry.
// A nil registry disables registration.
func WithRegistry(r *Registry) Option {
	return func(g *Group) {
		g.registry = r
	}
}

// WithCommandTimeout bounds every command of the default executor.
func WithCommandTimeout(timeout time.Duration) Option {
	return func(g *Group) {
		g.commandTimeout = timeout
	}
}

// WithMaxFileSize limits how many bytes a file source may hold.
func WithMaxFileSize(n int64) Option {
	return func(g *Group) {
		g.maxFileSize = n
	}
}

// Group declares a set of named sources and collects them into a key/value
// result. Populate Files, Commands, Constants and Children, then call
// Generate once, Update to collect and Get to read the result.
//
// Get is safe to call concurrently with Update; the source maps must not be
// modified while Generate runs.
type Group struct {
	// Name identifies the group. Empty means untitled.
	Name string

	// Extended includes sources marked with Extended().
	Extended bool

	// Anon drops keys matching Sensitive from Get.
	Anon bool

	Files     map[string]FileSource
	Commands  map[string]CommandSource
	Constants map[string]any

	// Children contribute their results to Get, see Get for the merge policy.
	Children []*Group

	// Sensitive lists key patterns ("exact", "prefix*", "*suffix",
	// "*contains*") that are redacted when Anon is set.
	Sensitive []string

	executor       CommandExecutor
	logger         *slog.Logger
	registry       *Registry
	commandTimeout time.Duration
	maxFileSize    int64

	mu          sync.RWMutex
	state       State
	descriptors []descriptor
	values      map[string]any
	failures    map[string]error
}

// New creates an empty Group and records it in its registry.
func New(opts ...Option) *Group {
	g := &Group{
		Files:       make(map[string]FileSource),
		Commands:    make(map[string]CommandSource),
		Constants:   make(map[string]any),
		registry:    DefaultRegistry,
		maxFileSize: defaults.MaxFileSize,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.executor == nil {
		g.executor = NewCommandExecutor(g.commandTimeout)
	}

	if g.registry != nil {
		g.registry.Register(g)
	}

	return g
}

// AddChild appends children, skipping nil groups and groups already present.
func (g *Group) AddChild(children ...*Group) *Group {
	for _, c := range children {
		if c == nil || slices.Contains(g.Children, c) {
			continue
		}
		g.Children = append(g.Children, c)
	}
	return g
}

// State returns the current lifecycle state.
func (g *Group) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Generate validates and normalizes all sources of g and its children.
// It may be called any number of times; descriptors are rebuilt from the
// current source maps on every call. Malformed sources are reported as a
// *ConfigurationError.
func (g *Group) Generate() error {
	return g.generate(make(map[*Group]bool))
}

func (g *Group) generate(visiting map[*Group]bool) error {
	if visiting[g] {
		return g.configError("", "group is nested inside itself")
	}
	visiting[g] = true
	defer delete(visiting, g)

	descs := make([]descriptor, 0, len(g.Files)+len(g.Commands)+len(g.Constants))
	seen := make(map[string]SourceKind)

	declare := func(key string, kind SourceKind) error {
		if strings.TrimSpace(key) == "" {
			return g.configError(key, "empty key")
		}
		if prev, ok := seen[key]; ok {
			return g.configError(key, fmt.Sprintf("declared as both %s and %s source", prev, kind))
		}
		seen[key] = kind
		return nil
	}

	for _, key := range slices.Sorted(maps.Keys(g.Files)) {
		src := g.Files[key]
		if src.OnlyExtended && !g.Extended {
			continue
		}
		if err := declare(key, KindFile); err != nil {
			return err
		}
		d, err := src.descriptor(key)
		if err != nil {
			return g.configError(key, err.Error())
		}
		descs = append(descs, d)
	}

	for _, key := range slices.Sorted(maps.Keys(g.Commands)) {
		src := g.Commands[key]
		if src.OnlyExtended && !g.Extended {
			continue
		}
		if err := declare(key, KindCommand); err != nil {
			return err
		}
		d, err := src.descriptor(key)
		if err != nil {
			return g.configError(key, err.Error())
		}
		descs = append(descs, d)
	}

	for _, key := range slices.Sorted(maps.Keys(g.Constants)) {
		if err := declare(key, KindConstant); err != nil {
			return err
		}
		descs = append(descs, descriptor{key: key, kind: KindConstant, value: g.Constants[key]})
	}

	names := make(map[string]bool)
	for i, child := range g.Children {
		if child == nil {
			return g.configError("", fmt.Sprintf("child %d is nil", i))
		}
		if child.Name != "" {
			if names[child.Name] {
				return g.configError("", fmt.Sprintf("duplicate child name %q", child.Name))
			}
			names[child.Name] = true
		}
		if err := child.generate(visiting); err != nil {
			return err
		}
	}

	g.mu.Lock()
	g.descriptors = descs
	if g.state == StateUninitialized {
		g.state = StateGenerated
	}
	g.mu.Unlock()

	g.log().Debug("generated group",
		slog.String("group", g.label()),
		slog.Int("sources", len(descs)),
		slog.Int("children", len(g.Children)),
	)

	return nil
}

// Update collects every source sequentially and then updates the children.
// A failing source is stored as a nil value and recorded in Failures; it
// never aborts the update. The group's own values are stored before the
// children run. A child that was never generated is recorded as a failure
// under its name. Only context cancellation and a missing Generate of g
// itself are returned as errors.
func (g *Group) Update(ctx context.Context) error {
	g.mu.RLock()
	state := g.state
	descs := g.descriptors
	g.mu.RUnlock()

	if state == StateUninitialized {
		return fmt.Errorf("%w: %q", ErrNotGenerated, g.label())
	}

	values := make(map[string]any, len(descs))
	failures := make(map[string]error)

	for _, d := range descs {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		v, err := g.collect(ctx, d)
		sourceReadDuration.WithLabelValues(string(d.kind)).Observe(time.Since(start).Seconds())

		if err != nil {
			values[d.key] = nil
			failures[d.key] = err
			sourceFailuresTotal.WithLabelValues(string(d.kind), failureReason(err)).Inc()
			g.log().Debug("source failed",
				slog.String("group", g.label()),
				slog.String("key", d.key),
				slog.String("error", err.Error()),
			)
			continue
		}
		values[d.key] = v
	}

	g.mu.Lock()
	g.values = values
	g.failures = failures
	g.state = StateUpdated
	g.mu.Unlock()

	for _, child := range g.Children {
		if child == nil {
			continue
		}
		err := child.Update(ctx)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotGenerated) {
			return fmt.Errorf("failed to update child of %q: %w", g.label(), err)
		}
		// children added after Generate are reported, not fatal
		g.mu.Lock()
		g.failures[child.label()] = err
		g.mu.Unlock()
		g.log().Debug("child not generated",
			slog.String("group", g.label()),
			slog.String("child", child.label()),
		)
	}

	g.log().Debug("updated group",
		slog.String("group", g.label()),
		slog.Int("values", len(values)),
		slog.Int("failures", len(failures)),
	)

	return nil
}

// Get returns a snapshot of the collected values merged with the results of
// all updated children. It is empty before the first Update.
//
// Merge policy: the result of a named child is nested under its name, the
// keys of an unnamed child are merged flat. On collisions the group's own
// keys win, then earlier children win over later ones.
func (g *Group) Get() map[string]any {
	g.mu.RLock()
	own := g.values
	if g.Anon && len(g.Sensitive) > 0 {
		own = measurement.FilterOut(own, g.Sensitive)
	}
	out := make(map[string]any, len(own)+len(g.Children))
	maps.Copy(out, own)
	g.mu.RUnlock()

	for _, child := range g.Children {
		if child == nil || child.State() != StateUpdated {
			continue
		}
		res := child.Get()
		if child.Name != "" {
			if _, exists := out[child.Name]; !exists {
				out[child.Name] = res
			}
			continue
		}
		for k, v := range res {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}

	return out
}

// Failures returns the per-key errors of the last Update. Failures of named
// children are prefixed with "<name>.".
func (g *Group) Failures() map[string]error {
	g.mu.RLock()
	out := make(map[string]error, len(g.failures))
	maps.Copy(out, g.failures)
	g.mu.RUnlock()

	for _, child := range g.Children {
		if child == nil {
			continue
		}
		prefix := ""
		if child.Name != "" {
			prefix = child.Name + "."
		}
		for k, err := range child.Failures() {
			if _, exists := out[prefix+k]; !exists {
				out[prefix+k] = err
			}
		}
	}

	return out
}

// Keys returns the keys Generate resolved for this group, in update order.
func (g *Group) Keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := make([]string, 0, len(g.descriptors))
	for _, d := range g.descriptors {
		keys = append(keys, d.key)
	}
	return keys
}

func (g *Group) collect(ctx context.Context, d descriptor) (any, error) {
	var (
		raw string
		err error
	)

	switch d.kind {
	case KindConstant:
		return d.value, nil
	case KindFile:
		raw, err = g.readFile(d.path)
	case KindCommand:
		raw, err = g.commandExecutor().Execute(ctx, d.name, d.args...)
	default:
		return nil, &SourceError{Key: d.key, Kind: d.kind, Err: fmt.Errorf("unknown source kind")}
	}
	if err != nil {
		return nil, &SourceError{Key: d.key, Kind: d.kind, Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, err)}
	}

	v, err := Extract(raw, d.re, d.convert)
	if err != nil {
		return nil, &SourceError{Key: d.key, Kind: d.kind, Err: err}
	}
	return v, nil
}

// readFile reads at most maxFileSize bytes of path. The file is closed
// before returning.
func (g *Group) readFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	limit := g.maxFileSize
	if limit <= 0 {
		limit = defaults.MaxFileSize
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%s exceeds maximum size of %d bytes", path, limit)
	}
	return string(data), nil
}

func (g *Group) commandExecutor() CommandExecutor {
	if g.executor == nil {
		g.executor = NewCommandExecutor(g.commandTimeout)
	}
	return g.executor
}

func (g *Group) configError(key, reason string) error {
	return &ConfigurationError{Group: g.label(), Key: key, Reason: reason}
}

func (g *Group) label() string {
	if g.Name == "" {
		return "untitled"
	}
	return g.Name
}

func (g *Group) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}
