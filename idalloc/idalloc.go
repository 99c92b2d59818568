// Package idalloc hands out unique identifiers for certificates and staff.
//
// An Allocator draws candidates from a Generator and claims them in a
// Registry. The claim is the uniqueness check, so two allocators sharing a
// registry never return the same identifier.
package idalloc

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMaxAttempts bounds the generate-and-claim loop.
const DefaultMaxAttempts = 10

// ErrExhausted is returned when every attempt produced an identifier that
// was already taken.
var ErrExhausted = errors.New("idalloc: attempts exhausted")

// Generator produces candidate identifiers.
type Generator interface {
	Next() (string, error)
}

// Registry records claimed identifiers. Claim reports false when id was
// claimed before.
type Registry interface {
	Claim(ctx context.Context, id string) (bool, error)
}

// Allocator combines a Generator with a Registry.
type Allocator struct {
	Generator   Generator
	Registry    Registry
	MaxAttempts int
}

// New creates an allocator with DefaultMaxAttempts.
func New(gen Generator, reg Registry) *Allocator {
	return &Allocator{Generator: gen, Registry: reg, MaxAttempts: DefaultMaxAttempts}
}

// Allocate returns an identifier that no earlier Allocate on the same
// registry returned.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	if a == nil || a.Generator == nil || a.Registry == nil {
		return "", fmt.Errorf("idalloc: allocator is not configured")
	}
	attempts := a.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		id, err := a.Generator.Next()
		if err != nil {
			return "", fmt.Errorf("生成标识失败: %w", err)
		}
		ok, err := a.Registry.Claim(ctx, id)
		if err != nil {
			return "", fmt.Errorf("登记标识 %s 失败: %w", id, err)
		}
		if ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, attempts)
}
