// Package service sits between the HTTP handlers and the stores. It fetches
// what the pure costing and offers packages need, calls them, and persists
// the results.
package service

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
