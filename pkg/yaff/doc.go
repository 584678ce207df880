// Package yaff holds the vocabulary shared by the chain engine and its
// collaborators: the function types user code implements, the Outcome of a
// finished chain, the error taxonomy and the ValueStack helpers.
//
// Highlights:
// - Action/Catcher/Finalizer/Done: the shapes of user work and its completion
// - Outcome: terminal snapshot of a chain (drained, finalized or failed)
// - Merge/Snapshot: ValueStack placement rules
// - UnhandledError/PanicError: errors surfaced by the engine itself
package yaff
