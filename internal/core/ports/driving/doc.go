// Package driving provides interfaces for primary/inbound ports.
// These are the operations the CLI and worker loop invoke on the core.
package driving
