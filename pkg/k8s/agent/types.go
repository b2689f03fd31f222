package agent

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
)

// Defaults applied by NewDeployer to empty Config fields.
const (
	DefaultNamespace = "default"
	DefaultName      = "machinestate"
	DefaultImage     = "ghcr.io/nvidia/machinestate:latest"
)

// Config describes the agent Job.
type Config struct {
	// Namespace holds the Job, its RBAC resources and the output ConfigMap.
	Namespace string

	ServiceAccountName string
	JobName            string
	Image              string

	// Output is the cm://namespace/name URI the agent writes its snapshot to.
	Output string

	// Args are appended to the snapshot command, e.g. "--extended".
	Args []string

	NodeSelector map[string]string
	Tolerations  []corev1.Toleration
}

// CleanupOptions controls which resources Cleanup removes.
type CleanupOptions struct {
	// RemoveRBAC also deletes the ServiceAccount, Role and RoleBinding.
	RemoveRBAC bool
}

// Deployer deploys the snapshot agent and tracks its Job.
type Deployer struct {
	clientset kubernetes.Interface
	config    Config
}

// NewDeployer creates a Deployer, filling empty Config fields with defaults.
func NewDeployer(clientset kubernetes.Interface, config Config) *Deployer {
	if config.Namespace == "" {
		config.Namespace = DefaultNamespace
	}
	if config.ServiceAccountName == "" {
		config.ServiceAccountName = DefaultName
	}
	if config.JobName == "" {
		config.JobName = DefaultName
	}
	if config.Image == "" {
		config.Image = DefaultImage
	}
	if config.Output == "" {
		config.Output = "cm://" + config.Namespace + "/" + DefaultName + "-snapshot"
	}
	return &Deployer{clientset: clientset, config: config}
}

// Config returns the effective configuration.
func (d *Deployer) Config() Config {
	return d.config
}
