// Package core implements the process-chain execution engine: the immutable
// chain description, the pipeline orchestrator that spawns one child per
// stage with their standard streams connected through kernel pipes, and the
// wait/poll engine that collects exit statuses.
package core
