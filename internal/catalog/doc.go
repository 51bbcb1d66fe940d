// Package catalog discovers capture sessions under the library root.
//
// A session is a <YYYY-MM-DD> date directory plus a multisequence directory
// that contains an artifact subdirectory. Listings are cached per scanned
// directory keyed by that directory's modification time, so repeated queries
// cost a single stat while the tree is quiet. The cache is one level deep by
// design: additions and removals of immediate children are detected, changes
// deeper in the tree (such as new checkpoint files) are the resolver's job.
//
// Unreadable or missing roots degrade to empty listings. "No sessions" is a
// normal, displayable state, never an error.
package catalog
