package agent

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/api/errors"
)

// Deploy deploys the agent with all required resources (RBAC + Job).
func (d *Deployer) Deploy(ctx context.Context) error {
	// RBAC is reused if it already exists
	if err := d.ensureServiceAccount(ctx); err != nil {
		return fmt.Errorf("failed to create ServiceAccount: %w", err)
	}

	if err := d.ensureRole(ctx); err != nil {
		return fmt.Errorf("failed to create Role: %w", err)
	}

	if err := d.ensureRoleBinding(ctx); err != nil {
		return fmt.Errorf("failed to create RoleBinding: %w", err)
	}

	// the Job is always recreated
	if err := d.ensureJob(ctx); err != nil {
		return fmt.Errorf("failed to create Job: %w", err)
	}

	return nil
}

// WaitForCompletion waits for the agent Job to complete successfully.
// Returns error if the Job fails or times out.
func (d *Deployer) WaitForCompletion(ctx context.Context, timeout time.Duration) error {
	return d.waitForJobCompletion(ctx, timeout)
}

// Cleanup removes the agent Job and optionally the RBAC resources.
// By default, RBAC resources are kept for reuse in future deployments.
func (d *Deployer) Cleanup(ctx context.Context, opts CleanupOptions) error {
	if err := d.deleteJob(ctx); err != nil {
		return fmt.Errorf("failed to delete Job: %w", err)
	}

	if !opts.RemoveRBAC {
		return nil
	}

	if err := d.deleteRoleBinding(ctx); err != nil {
		return fmt.Errorf("failed to delete RoleBinding: %w", err)
	}

	if err := d.deleteRole(ctx); err != nil {
		return fmt.Errorf("failed to delete Role: %w", err)
	}

	if err := d.deleteServiceAccount(ctx); err != nil {
		return fmt.Errorf("failed to delete ServiceAccount: %w", err)
	}

	return nil
}

// ignoreAlreadyExists returns nil if the error is "already exists", otherwise returns the error.
func ignoreAlreadyExists(err error) error {
	if errors.IsAlreadyExists(err) {
		return nil
	}
	return err
}

// ignoreNotFound returns nil if the error is "not found", otherwise returns the error.
func ignoreNotFound(err error) error {
	if errors.IsNotFound(err) {
		return nil
	}
	return err
}
