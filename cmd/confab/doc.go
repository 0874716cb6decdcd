// Package main hosts the Confab CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon API, queue maintenance operations, log tailing,
// transcript and document retrieval, and configuration scaffolding. Commands
// that only need the queue database fall back to direct store access when
// the daemon is not running. It centralizes configuration resolution and API
// address discovery so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
