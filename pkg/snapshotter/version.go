package snapshotter

import "github.com/NVIDIA/machinestate/pkg/header"

const (
	// Kind is the resource kind for snapshots
	Kind = "Snapshot"

	// FullAPIVersion is the complete API version string
	FullAPIVersion = header.APIDomain + "/" + header.APIVersionV1Alpha1
)

// Metadata keys set on every snapshot.
const (
	MetadataSnapshotID      = "snapshot-id"
	MetadataSnapshotVersion = "snapshot-version"
	MetadataSourceNode      = "source-node"
	MetadataExtended        = "extended"
	MetadataAnon            = "anonymous"
)
