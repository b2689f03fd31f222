package agent

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func (d *Deployer) objectMeta(name string) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:      name,
		Namespace: d.config.Namespace,
		Labels: map[string]string{
			"app.kubernetes.io/name":       DefaultName,
			"app.kubernetes.io/managed-by": DefaultName,
		},
	}
}

func (d *Deployer) ensureServiceAccount(ctx context.Context) error {
	sa := &corev1.ServiceAccount{
		ObjectMeta: d.objectMeta(d.config.ServiceAccountName),
	}
	_, err := d.clientset.CoreV1().ServiceAccounts(d.config.Namespace).Create(ctx, sa, metav1.CreateOptions{})
	return ignoreAlreadyExists(err)
}

// ensureRole grants the agent write access to ConfigMaps in its namespace.
func (d *Deployer) ensureRole(ctx context.Context) error {
	role := &rbacv1.Role{
		ObjectMeta: d.objectMeta(d.config.ServiceAccountName),
		Rules: []rbacv1.PolicyRule{
			{
				APIGroups: []string{""},
				Resources: []string{"configmaps"},
				Verbs:     []string{"get", "create", "update", "patch"},
			},
		},
	}
	_, err := d.clientset.RbacV1().Roles(d.config.Namespace).Create(ctx, role, metav1.CreateOptions{})
	return ignoreAlreadyExists(err)
}

func (d *Deployer) ensureRoleBinding(ctx context.Context) error {
	rb := &rbacv1.RoleBinding{
		ObjectMeta: d.objectMeta(d.config.ServiceAccountName),
		Subjects: []rbacv1.Subject{
			{
				Kind:      rbacv1.ServiceAccountKind,
				Name:      d.config.ServiceAccountName,
				Namespace: d.config.Namespace,
			},
		},
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "Role",
			Name:     d.config.ServiceAccountName,
		},
	}
	_, err := d.clientset.RbacV1().RoleBindings(d.config.Namespace).Create(ctx, rb, metav1.CreateOptions{})
	return ignoreAlreadyExists(err)
}

func (d *Deployer) deleteServiceAccount(ctx context.Context) error {
	return ignoreNotFound(d.clientset.CoreV1().ServiceAccounts(d.config.Namespace).
		Delete(ctx, d.config.ServiceAccountName, metav1.DeleteOptions{}))
}

func (d *Deployer) deleteRole(ctx context.Context) error {
	return ignoreNotFound(d.clientset.RbacV1().Roles(d.config.Namespace).
		Delete(ctx, d.config.ServiceAccountName, metav1.DeleteOptions{}))
}

func (d *Deployer) deleteRoleBinding(ctx context.Context) error {
	return ignoreNotFound(d.clientset.RbacV1().RoleBindings(d.config.Namespace).
		Delete(ctx, d.config.ServiceAccountName, metav1.DeleteOptions{}))
}
