package port

import "context"

type VersionControl interface {
	// HasUncommittedChanges reports whether path differs from the committed version.
	HasUncommittedChanges(ctx context.Context, path string) (bool, error)
}
