// Package store provides the persistent configuration store that holds the
// encrypted master-secret envelope.
//
// The vault consumes the small Store interface (Has/Get/Set) and uses
// exactly one key in it. Two implementations are provided:
//
//   - Storage: BBolt-backed, two buckets:
//       config:  version, vault ID, timestamps (unencrypted)
//       secrets: envelope string and any other stored values
//     BBolt's ACID transactions make each Set an atomic replace, so a crash
//     mid-write never leaves a partially updated envelope.
//   - Memory: map-backed, for tests and in-process embedding.
package store
