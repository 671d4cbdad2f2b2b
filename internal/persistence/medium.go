package persistence

import (
	"context"
	"errors"
)

// Keys written to the persistence media.
const (
	KeyAuthToken   = "authToken"
	KeyCurrentUser = "currentUser"
	KeyStaffList   = "staffList"
	KeyReports     = "reports"
)

// ErrMediumUnavailable is returned when a medium has no backing connection.
var ErrMediumUnavailable = errors.New("persistence medium not configured")

// Medium is a string key-value store. Writes are last-writer-wins.
type Medium interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Scoped prefixes every key with a client identifier so that several
// browser contexts can share one backing medium.
func Scoped(m Medium, scope string) Medium {
	if scope == "" {
		return m
	}
	return &scopedMedium{inner: m, prefix: scope + ":"}
}

type scopedMedium struct {
	inner  Medium
	prefix string
}

func (s *scopedMedium) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedMedium) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scopedMedium) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}
