// Package app orchestrates the constraint network behind the command
// surface: it serializes external commands, drives propagation to fixpoint,
// rolls diverged commands back, and publishes change notifications.
//
// Responsibilities:
// - Resolve path addresses to network entities.
// - Execute spawn/send/wire/delete/refactor commands atomically.
// - Publish typed change events after each command settles.
// - Load and save network snapshots.
//
// Non-responsibilities:
// - JSON-RPC/HTTP protocol handling and endpoint-level mapping.
package app
