package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/machinestate/pkg/collector"
	"github.com/NVIDIA/machinestate/pkg/config"
	"github.com/NVIDIA/machinestate/pkg/defaults"
	"github.com/NVIDIA/machinestate/pkg/infogroup"
	"github.com/NVIDIA/machinestate/pkg/k8s/client"
	"github.com/NVIDIA/machinestate/pkg/serializer"
)

// NodeSnapshotter collects the state of the current machine.
// It builds the selected built-in groups plus any configured definitions,
// updates them in parallel and serializes the result.
type NodeSnapshotter struct {
	// Version is the snapshotter version.
	Version string

	// Factory is the group factory to use. If nil, the default factory is used.
	Factory collector.Factory

	// Groups selects built-in groups by name. Empty means all.
	Groups []string

	// Definitions are additional groups loaded from a definitions file.
	Definitions []config.Definition

	// Extended includes sources marked as extended.
	Extended bool

	// Anon drops sensitive keys.
	Anon bool

	// Options are applied to every group after the options derived from
	// the fields above.
	Options []infogroup.Option

	// Concurrency bounds parallel group updates. Zero uses the default.
	Concurrency int

	// Timeout bounds the whole collection. Zero uses the default.
	Timeout time.Duration

	// Serializer is the serializer to use for output. If nil, a default stdout JSON serializer is used.
	Serializer serializer.Serializer
}

// Measure collects a snapshot and serializes it using the configured Serializer.
func (n *NodeSnapshotter) Measure(ctx context.Context) error {
	snap, err := n.Collect(ctx)
	if err != nil {
		return err
	}

	if n.Serializer == nil {
		n.Serializer = serializer.NewStdoutWriter(serializer.FormatJSON)
	}

	if err := n.Serializer.Serialize(ctx, snap); err != nil {
		slog.Error("failed to serialize", slog.String("error", err.Error()))
		return fmt.Errorf("failed to serialize: %w", err)
	}

	return nil
}

// Collect builds, generates and updates all groups and returns the snapshot.
// Configuration errors and cancellation are returned; individual sources
// that fail are reported in Snapshot.Failures.
func (n *NodeSnapshotter) Collect(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	defer func() {
		snapshotCollectionDuration.Observe(time.Since(start).Seconds())
	}()

	root, err := n.build()
	if err != nil {
		snapshotCollectionTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := root.Generate(); err != nil {
		snapshotCollectionTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("invalid group configuration: %w", err)
	}

	slog.Debug("starting snapshot", slog.Int("groups", len(root.Children)))

	if err := n.update(ctx, root.Children); err != nil {
		snapshotCollectionTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	snap := NewSnapshot()
	snap.Metadata[MetadataSnapshotID] = uuid.New().String()
	snap.Metadata[MetadataSnapshotVersion] = n.Version
	snap.Metadata[MetadataSourceNode] = client.GetNodeName()
	snap.Metadata[MetadataExtended] = strconv.FormatBool(n.Extended)
	snap.Metadata[MetadataAnon] = strconv.FormatBool(n.Anon)
	snap.State = root.Get()

	if failures := root.Failures(); len(failures) > 0 {
		snap.Failures = make(map[string]string, len(failures))
		for k, err := range failures {
			snap.Failures[k] = err.Error()
		}
	}

	snapshotCollectionTotal.WithLabelValues("success").Inc()
	snapshotGroupCount.Set(float64(len(root.Children)))

	slog.Debug("snapshot collection complete",
		slog.Int("groups", len(root.Children)),
		slog.Int("failures", len(snap.Failures)),
		slog.Duration("duration", time.Since(start)),
	)

	return snap, nil
}

// build creates an unregistered root group holding the built-in and
// definition groups as children, so that Generate rejects name clashes.
func (n *NodeSnapshotter) build() (*infogroup.Group, error) {
	if n.Factory == nil {
		n.Factory = collector.NewDefaultFactory()
	}

	opts := append([]infogroup.Option{
		infogroup.WithExtended(n.Extended),
		infogroup.WithAnon(n.Anon),
	}, n.Options...)

	groups, err := n.Factory.Create(n.Groups, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create groups: %w", err)
	}

	defined, err := config.BuildAll(n.Definitions, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build group definitions: %w", err)
	}

	root := infogroup.New(infogroup.WithName("snapshot"), infogroup.WithRegistry(nil))
	root.AddChild(groups...)
	root.AddChild(defined...)
	return root, nil
}

// update runs Update on every group in parallel. Each group is updated by a
// single goroutine; groups share nothing.
func (n *NodeSnapshotter) update(ctx context.Context, groups []*infogroup.Group) error {
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = defaults.CollectorTimeout
	}
	limit := n.Concurrency
	if limit <= 0 {
		limit = defaults.CollectorConcurrency
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, grp := range groups {
		g.Go(func() error {
			groupStart := time.Now()
			defer func() {
				snapshotGroupDuration.WithLabelValues(label(grp)).Observe(time.Since(groupStart).Seconds())
			}()

			if err := grp.Update(gctx); err != nil {
				slog.Error("failed to update group",
					slog.String("group", label(grp)),
					slog.String("error", err.Error()),
				)
				return fmt.Errorf("failed to update group %q: %w", label(grp), err)
			}
			return nil
		})
	}

	return g.Wait()
}

func label(g *infogroup.Group) string {
	if g.Name == "" {
		return "untitled"
	}
	return g.Name
}

// SnapshotFromFile loads a Snapshot from a file path or cm://namespace/name URI.
func SnapshotFromFile(ctx context.Context, path string) (*Snapshot, error) {
	snap, err := serializer.FromFile[Snapshot](ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot from %q: %w", path, err)
	}

	slog.Debug("successfully loaded snapshot from file",
		slog.String("path", path),
		slog.String("kind", snap.Kind),
		slog.String("apiVersion", snap.APIVersion),
		slog.Int("groups", len(snap.State)),
	)

	return snap, nil
}
