// Package logs reads the daemon log file incrementally so the CLI can show
// recent activity and follow new lines over IPC. Negative offsets mean "the
// last N lines"; the returned offset resumes reading where the last call
// stopped.
package logs
