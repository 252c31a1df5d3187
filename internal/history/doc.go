// Package history persists a record of executed command chains in a SQLite
// database: the shell-notation command line, the spawned pids, and the
// collected exit codes. Several processes may share one history file; schema
// initialization is coordinated through a file lock next to the database.
package history
