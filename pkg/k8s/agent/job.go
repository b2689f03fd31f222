package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/ptr"
)

const (
	jobPollInterval      = 2 * time.Second
	jobTTLAfterFinished  = int32(3600)
	jobDeletePropagation = metav1.DeletePropagationBackground
)

// hostMount exposes a host path at the same location inside the container.
type hostMount struct {
	name     string
	path     string
	pathType corev1.HostPathType
}

// hostMounts are the host files the collectors read that a container
// would otherwise see from its own image.
var hostMounts = []hostMount{
	{name: "os-release", path: "/etc/os-release", pathType: corev1.HostPathFileOrCreate},
	{name: "machine-id", path: "/etc/machine-id", pathType: corev1.HostPathFileOrCreate},
	{name: "run-systemd", path: "/run/systemd", pathType: corev1.HostPathDirectoryOrCreate},
}

// args returns the snapshot command line run by the agent.
func (d *Deployer) args() []string {
	args := []string{"snapshot", "--output", d.config.Output, "--format", "yaml"}
	return append(args, d.config.Args...)
}

func (d *Deployer) job() *batchv1.Job {
	var (
		volumes []corev1.Volume
		mounts  []corev1.VolumeMount
	)
	for _, m := range hostMounts {
		volumes = append(volumes, corev1.Volume{
			Name: m.name,
			VolumeSource: corev1.VolumeSource{
				HostPath: &corev1.HostPathVolumeSource{Path: m.path, Type: ptr.To(m.pathType)},
			},
		})
		mounts = append(mounts, corev1.VolumeMount{Name: m.name, MountPath: m.path, ReadOnly: true})
	}

	return &batchv1.Job{
		ObjectMeta: d.objectMeta(d.config.JobName),
		Spec: batchv1.JobSpec{
			BackoffLimit:            ptr.To(int32(0)),
			TTLSecondsAfterFinished: ptr.To(jobTTLAfterFinished),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: d.objectMeta(d.config.JobName),
				Spec: corev1.PodSpec{
					ServiceAccountName: d.config.ServiceAccountName,
					RestartPolicy:      corev1.RestartPolicyNever,
					HostPID:            true,
					HostNetwork:        true,
					HostIPC:            true,
					NodeSelector:       d.config.NodeSelector,
					Tolerations:        d.config.Tolerations,
					Volumes:            volumes,
					Containers: []corev1.Container{
						{
							Name:    DefaultName,
							Image:   d.config.Image,
							Command: []string{DefaultName},
							Args:    d.args(),
							Env: []corev1.EnvVar{
								{
									Name: "NODE_NAME",
									ValueFrom: &corev1.EnvVarSource{
										FieldRef: &corev1.ObjectFieldSelector{FieldPath: "spec.nodeName"},
									},
								},
							},
							SecurityContext: &corev1.SecurityContext{
								Privileged: ptr.To(true),
							},
							VolumeMounts: mounts,
						},
					},
				},
			},
		},
	}
}

// ensureJob deletes any previous agent Job and creates a fresh one.
func (d *Deployer) ensureJob(ctx context.Context) error {
	if err := d.deleteJob(ctx); err != nil {
		return err
	}
	_, err := d.clientset.BatchV1().Jobs(d.config.Namespace).Create(ctx, d.job(), metav1.CreateOptions{})
	return err
}

func (d *Deployer) deleteJob(ctx context.Context) error {
	return ignoreNotFound(d.clientset.BatchV1().Jobs(d.config.Namespace).
		Delete(ctx, d.config.JobName, metav1.DeleteOptions{PropagationPolicy: ptr.To(jobDeletePropagation)}))
}

// waitForJobCompletion polls the Job until it succeeds, fails or the
// timeout expires.
func (d *Deployer) waitForJobCompletion(ctx context.Context, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, jobPollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		job, err := d.clientset.BatchV1().Jobs(d.config.Namespace).Get(ctx, d.config.JobName, metav1.GetOptions{})
		if err != nil {
			return false, err
		}
		for _, c := range job.Status.Conditions {
			if c.Status != corev1.ConditionTrue {
				continue
			}
			switch c.Type {
			case batchv1.JobComplete:
				return true, nil
			case batchv1.JobFailed:
				return false, fmt.Errorf("job %s/%s failed: %s", d.config.Namespace, d.config.JobName, c.Message)
			}
		}
		slog.Debug("waiting for agent job",
			slog.String("job", d.config.JobName),
			slog.Int("active", int(job.Status.Active)),
		)
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("agent job did not complete: %w", err)
	}
	return nil
}
