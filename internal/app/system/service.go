package system

import "context"

// Service represents a lifecycle-managed component. All application modules
// must implement this interface so the system manager can start and stop them
// deterministically.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// NoopService satisfies Service for modules without background work.
type NoopService struct {
	ServiceName string
}

// Name returns the service name.
func (n NoopService) Name() string { return n.ServiceName }

// Start is a no-op.
func (NoopService) Start(context.Context) error { return nil }

// Stop is a no-op.
func (NoopService) Stop(context.Context) error { return nil }
