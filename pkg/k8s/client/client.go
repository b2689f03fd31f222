// Package client builds the Kubernetes client used to publish snapshots to
// ConfigMaps.
package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// EnvNodeName is set through the downward API when running as a Pod.
const EnvNodeName = "NODE_NAME"

var (
	clientOnce   sync.Once
	cachedClient *kubernetes.Clientset
	cachedConfig *rest.Config
	clientErr    error
)

// GetKubeClient returns a shared client, created on first call from the
// default kubeconfig discovery of BuildKubeClient.
func GetKubeClient() (*kubernetes.Clientset, *rest.Config, error) {
	clientOnce.Do(func() {
		cachedClient, cachedConfig, clientErr = BuildKubeClient("")
	})
	return cachedClient, cachedConfig, clientErr
}

// BuildKubeClient creates a client from kubeconfig. An empty path tries
// KUBECONFIG, then ~/.kube/config, then the in-cluster service account.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	config, err := clientcmd.BuildConfigFromFlags("", ResolveKubeconfig(kubeconfig))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build kube config: %w", err)
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return client, config, nil
}

// ResolveKubeconfig returns the kubeconfig path to use, or "" for the
// in-cluster configuration.
func ResolveKubeconfig(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

// GetNodeName returns the Kubernetes node name from NODE_NAME, falling back
// to the host name.
func GetNodeName() string {
	if name := strings.TrimSpace(os.Getenv(EnvNodeName)); name != "" {
		return name
	}
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
