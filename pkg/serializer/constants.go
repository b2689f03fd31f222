package serializer

// URI scheme constants for output destinations
const (
	// ConfigMapURIScheme is the URI scheme for Kubernetes ConfigMap destinations.
	// Format: cm://namespace/configmap-name
	ConfigMapURIScheme = "cm://"

	// StdoutURI is the special URI indicating output should be written to stdout.
	StdoutURI = "-"

	// ConfigMapDataKeyPrefix prefixes the ConfigMap data key; the format
	// extension is appended ("snapshot.json", "snapshot.yaml").
	ConfigMapDataKeyPrefix = "snapshot."

	// ManagedByLabel marks ConfigMaps written by machinestate.
	ManagedByLabel = "app.kubernetes.io/managed-by"
	ManagedByValue = "machinestate"
)
