// Package chain provides the fluent builder for asynchronous chains.
//
// A Chain holds a queue of deferred work and a stack of values. Sequential
// steps replace the values with their results; consecutive parallel steps
// form a batch whose results land in the slot matching their order in the
// chain. Errors skip ahead to the nearest Catch or to Finally.
//
// Key operations:
// - New/FromValues: create a chain, optionally seeded with values
// - Seq: run a step after everything before it finished
// - Par: run a step together with its neighbouring Par steps
// - Limit/ParLimit: cap how many members of a batch run at once
// - Spawn: child chain sharing logger, hooks and default limit
// - Catch: handle an error travelling down the chain
// - Finally: terminal callback receiving the error or the final values
// - Run/Wait: arm dispatch and wait for the chain to settle
package chain
