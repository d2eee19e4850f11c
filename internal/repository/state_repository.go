package repository

import (
	"context"

	"github.com/devrep/reputation-registry/internal/registry"
)

// StateRepository is a registry state backend that can report its health.
type StateRepository interface {
	registry.Store
	Ping(ctx context.Context) error
}

// Backend names a StateRepository for readiness reporting.
type Backend struct {
	Name string
	Repo StateRepository
}
