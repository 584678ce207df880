// Package telemetry makes chains observable.
//
// It includes:
//   - logging.go: structured logging through slog, configured from the environment
//   - metrics.go: Prometheus metrics attached to the engine as hooks
package telemetry
