package inventory

import (
	"context"
	"sync"
)

// Services hands out one Service per resolved Backend so that cycles against
// the same table are serialized inside this process.
type Services struct {
	backends Backends
	opts     Options

	mu       sync.Mutex
	services map[Backend]*Service
}

// NewServices creates a Service registry over backends.
func NewServices(backends Backends, opts Options) *Services {
	return &Services{
		backends: backends,
		opts:     opts,
		services: make(map[Backend]*Service),
	}
}

// For returns the Service serving a session.
func (s *Services) For(ctx context.Context, sessionID string) (*Service, error) {
	b, err := s.backends.For(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.services[b]
	if !ok {
		svc = NewService(b, s.opts)
		s.services[b] = svc
	}
	return svc, nil
}

// Forget drops the Service of a backend that is no longer in use.
func (s *Services) Forget(b Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.services, b)
}
