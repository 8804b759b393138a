package port

import "context"

// ReadinessProbe reports whether the backend can currently answer requests.
type ReadinessProbe interface {
	Ready(ctx context.Context) error
}
