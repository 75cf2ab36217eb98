package health

import (
	"context"
	"time"
)

const (
	// DefaultStoreTimeout bounds a persistence backend health check.
	DefaultStoreTimeout = 5 * time.Second
	// DefaultCacheTimeout bounds a cache health check.
	DefaultCacheTimeout = 2 * time.Second
)

// Checkable is satisfied by every store adapter.
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// AdapterChecker runs HealthCheck on a store adapter with a timeout.
// A failure is reported with the checker's failure status.
type AdapterChecker struct {
	name          string
	adapter       Checkable
	timeout       time.Duration
	failureStatus Status
}

// NewAdapterChecker creates a checker that reports failures as unhealthy.
func NewAdapterChecker(name string, adapter Checkable, timeout time.Duration) *AdapterChecker {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &AdapterChecker{
		name:          name,
		adapter:       adapter,
		timeout:       timeout,
		failureStatus: StatusUnhealthy,
	}
}

// NewStoreChecker checks the persistence backend; a failure is unhealthy.
func NewStoreChecker(backendType string, store Checkable) *AdapterChecker {
	return NewAdapterChecker("store:"+backendType, store, DefaultStoreTimeout)
}

// NewCacheChecker checks the entity cache. Cache errors never fail port
// operations, so a failing cache only degrades the service.
func NewCacheChecker(cache Checkable) *AdapterChecker {
	c := NewAdapterChecker("cache:redis", cache, DefaultCacheTimeout)
	c.failureStatus = StatusDegraded
	return c
}

// Check performs the health check on the adapter
func (c *AdapterChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.adapter.HealthCheck(checkCtx)
	duration := time.Since(start)

	if err != nil {
		return CheckResult{
			Name:      c.name,
			Status:    c.failureStatus,
			Error:     err.Error(),
			Timestamp: time.Now(),
			Duration:  duration,
		}
	}
	return CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "OK",
		Timestamp: time.Now(),
		Duration:  duration,
	}
}

// Name returns the name of the health check
func (c *AdapterChecker) Name() string {
	return c.name
}

// PingChecker always reports healthy. It keeps /health meaningful for the
// memory backend, which has nothing to ping.
type PingChecker struct {
	name string
}

// NewPingChecker creates a new ping checker
func NewPingChecker(name string) *PingChecker {
	return &PingChecker{name: name}
}

// Check always returns healthy status
func (c *PingChecker) Check(context.Context) CheckResult {
	return CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "alive",
		Timestamp: time.Now(),
	}
}

// Name returns the name of the health check
func (c *PingChecker) Name() string {
	return c.name
}
