package health

import "context"

// ClusterReporter returns the backend's self-reported cluster health.
type ClusterReporter interface {
	ClusterHealth(ctx context.Context) (string, error)
}
