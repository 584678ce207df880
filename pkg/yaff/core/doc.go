// Package core contains the chain engine: the pending queue with its batch
// positions, the overflow stack for limited parallel batches, the serial loop
// every state change runs on, and the dispatcher/executor/error propagation
// that drive a chain to completion. It does not expose a builder; package
// chain wraps the Engine with a fluent API.
package core
