// Package translation provides machine translation backends behind a single
// Backend interface, a registry that maps model names to backend factories,
// retry and circuit breaker decorators, and a persistent phrase cache with
// per phrase timing statistics.
package translation
