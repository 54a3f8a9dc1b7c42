package manifest

import (
	"context"
	"fmt"
	"log/slog"
)

// RemoteDeleter deletes one kind of resource from the workspace. One
// implementation exists per resource type; adding a type means adding an
// implementation and a dispatch entry, checked at construction.
type RemoteDeleter interface {
	Delete(ctx context.Context, id string) error
}

// ListResult is the JSON shape returned by the list tool.
type ListResult struct {
	Resources []Record `json:"resources"`
	Count     int      `json:"count"`
}

// DeleteResult describes what a delete operation actually did. The
// operation itself never fails: remote errors are captured here instead of
// propagating.
//
// RemovedFromManifest is the authoritative signal for the "record did not
// exist" outcome; Success preserves the historical composition where a
// missing record reads as failure unless a remote deletion succeeded.
type DeleteResult struct {
	Success             bool   `json:"success"`
	RemovedFromManifest bool   `json:"removed_from_manifest"`
	DeletedFromRemote   bool   `json:"deleted_from_databricks"`
	Error               string `json:"error,omitempty"`
}

// Gateway lists tracked resources and deletes them, remotely and/or from the
// manifest.
type Gateway struct {
	store    Store
	deleters map[Type]RemoteDeleter
	logger   *slog.Logger
}

// NewGateway wires the gateway with its store and per-type deleters.
func NewGateway(store Store, deleters map[Type]RemoteDeleter, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{store: store, deleters: deleters, logger: logger}
}

// List returns tracked resources, optionally filtered by type. Pure read,
// no side effects.
func (g *Gateway) List(typeFilter Type) ListResult {
	resources := g.store.List(typeFilter)
	return ListResult{Resources: resources, Count: len(resources)}
}

// Delete removes the record for (t, id) from the manifest and, when
// alsoRemote is set, deletes the resource from the workspace first.
//
// The manifest removal is attempted regardless of how the remote deletion
// went; a crash between the two steps can orphan a manifest record, which is
// an accepted inconsistency window.
func (g *Gateway) Delete(ctx context.Context, t Type, id string, alsoRemote bool) DeleteResult {
	result := DeleteResult{Success: true}

	if alsoRemote {
		if err := g.deleteRemote(ctx, t, id); err != nil {
			result.Error = fmt.Sprintf("Databricks deletion failed: %v", err)
			result.Success = false
			g.logger.Warn("remote deletion failed", "type", t, "id", id, "error", err)
		} else {
			result.DeletedFromRemote = true
			g.logger.Info("deleted resource from workspace", "type", t, "id", id)
		}
	}

	result.RemovedFromManifest = g.store.Remove(t, id)

	if !result.RemovedFromManifest && result.Error == "" {
		result.Error = fmt.Sprintf("Resource %s/%s not found in manifest", t, id)
		result.Success = result.DeletedFromRemote
	}

	return result
}

// deleteRemote dispatches to the per-type deleter. Errors stop here: callers
// get a string in the result, never a propagated error.
func (g *Gateway) deleteRemote(ctx context.Context, t Type, id string) error {
	deleter, ok := g.deleters[t]
	if !ok {
		return fmt.Errorf("unsupported resource type for deletion: %s", t)
	}
	return deleter.Delete(ctx, id)
}
