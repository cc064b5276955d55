// Package server runs the HTTP transport: startup, signal handling, and
// graceful shutdown.
package server
