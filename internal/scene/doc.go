// Package scene defines the loaded-checkpoint payload and the loader that
// reads checkpoints into memory.
//
// A Payload is opaque to this repository: rendering consumes its bytes, the
// viewer only guarantees a published payload was read completely. Loaders are
// expected to be slow; callers run them off the interactive path.
package scene
