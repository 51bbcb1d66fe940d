// Command bricsview is the CLI for browsing capture sessions, steering the
// viewer daemon, and fanning out training runs.
package main
