package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/machinestate/pkg/k8s/client"
)

// ParseConfigMapURI splits cm://namespace/name into its parts.
func ParseConfigMapURI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, ConfigMapURIScheme)
	if !ok {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q, expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	namespace, name, found := strings.Cut(rest, "/")
	if !found || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q, expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	return namespace, name, nil
}

// ConfigMapWriter stores serialized values in a Kubernetes ConfigMap,
// creating it when missing and replacing its data otherwise.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
	client    kubernetes.Interface
}

// NewConfigMapWriter returns a writer for the ConfigMap namespace/name. The
// Kubernetes client is resolved on first use. Table output is stored as YAML.
func NewConfigMapWriter(namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() || format == FormatTable {
		format = FormatYAML
	}
	return &ConfigMapWriter{namespace: namespace, name: name, format: format}
}

// WithClient sets the Kubernetes client used by the writer.
func (w *ConfigMapWriter) WithClient(c kubernetes.Interface) *ConfigMapWriter {
	w.client = c
	return w
}

// DataKey returns the ConfigMap data key the value is stored under.
func (w *ConfigMapWriter) DataKey() string {
	return ConfigMapDataKeyPrefix + string(w.format)
}

// Serialize encodes v and upserts the ConfigMap.
func (w *ConfigMapWriter) Serialize(ctx context.Context, v any) error {
	data, err := Marshal(w.format, v)
	if err != nil {
		return err
	}

	cs, err := w.kubeClient()
	if err != nil {
		return err
	}

	cms := cs.CoreV1().ConfigMaps(w.namespace)
	existing, err := cms.Get(ctx, w.name, metav1.GetOptions{})
	switch {
	case apierrors.IsNotFound(err):
		cm := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      w.name,
				Namespace: w.namespace,
				Labels:    map[string]string{ManagedByLabel: ManagedByValue},
			},
			Data: map[string]string{w.DataKey(): string(data)},
		}
		if _, err := cms.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create ConfigMap %s/%s: %w", w.namespace, w.name, err)
		}
		slog.Debug("created ConfigMap", slog.String("namespace", w.namespace), slog.String("name", w.name))
		return nil
	case err != nil:
		return fmt.Errorf("failed to get ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}

	updated := existing.DeepCopy()
	if updated.Labels == nil {
		updated.Labels = make(map[string]string)
	}
	updated.Labels[ManagedByLabel] = ManagedByValue
	updated.Data = map[string]string{w.DataKey(): string(data)}

	if _, err := cms.Update(ctx, updated, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	slog.Debug("updated ConfigMap", slog.String("namespace", w.namespace), slog.String("name", w.name))
	return nil
}

// Close is a no-op.
func (w *ConfigMapWriter) Close() error {
	return nil
}

func (w *ConfigMapWriter) kubeClient() (kubernetes.Interface, error) {
	if w.client != nil {
		return w.client, nil
	}
	cs, _, err := client.GetKubeClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
	}
	w.client = cs
	return cs, nil
}

// readConfigMap returns the stored document and its format.
func readConfigMap(ctx context.Context, cs kubernetes.Interface, namespace, name string) ([]byte, Format, error) {
	cm, err := cs.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}
	for _, f := range []Format{FormatJSON, FormatYAML} {
		if data, ok := cm.Data[ConfigMapDataKeyPrefix+string(f)]; ok {
			return []byte(data), f, nil
		}
	}
	return nil, "", fmt.Errorf("ConfigMap %s/%s has no snapshot data", namespace, name)
}
