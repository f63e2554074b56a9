package services

import (
	"context"
	"time"
)

// Option configures a service.
type Option func(*options)

type options struct {
	now          func() time.Time
	invalidators []Invalidator
}

// Invalidator drops cached read models after a write that changes their inputs.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// WithClock replaces the wall clock, used for timestamps and overdue checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithInvalidator registers inv to be called after every successful write.
func WithInvalidator(inv Invalidator) Option {
	return func(o *options) {
		if inv != nil {
			o.invalidators = append(o.invalidators, inv)
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// changed notifies the registered invalidators.
func (o options) changed() {
	for _, inv := range o.invalidators {
		inv.Invalidate(context.Background())
	}
}
