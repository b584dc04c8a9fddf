// Package component defines the lifecycle interface for long-lived iterkit
// resources and a Registry that starts them in order and stops them in
// reverse order.
//
// A prefetch engine owns a worker goroutine that must not outlive the
// program's main loop; prefetch.AsComponent adapts an engine so the registry
// can report its health and shut it down on exit.
//
// # Interfaces
//
//   - Component: Name/Start/Stop/Health lifecycle
//   - Describable: one-line summaries for Registry.Describe
package component
