// Package sugar contains combinators built on top of chain.Seq and chain.Par.
// None of them adds scheduling behaviour; each one is a sequential step that
// reshapes the value stack, or spawns a child chain whose finalizer completes
// the parent step. ForEach does not wait for its child.
//
// Groups:
// - Map/Filter/Reduce/Flatten/Unflatten: synchronous reshaping
// - Set/Push/Extend/Unshift/Pop/Shift/Splice/Reverse/Empty/Pass: stack edits
// - ParMap/ParEach/ParFilter/SeqMap/SeqEach/SeqFilter/ForEach: per-value work
// - SeqWith/ParWith: steps with bound arguments
package sugar
