// Package trainrun discovers capture stages that are ready for training,
// launches the external trainer over each of them, and records every attempt
// in a SQLite ledger so batch runs can be audited and resumed.
package trainrun
