// Package internal holds the InternHub server internals.
//
// The tree is organized by responsibility:
//   - api: HTTP routing, handlers, middleware and problem responses
//   - domain: accounts, internships and applications services and models
//   - storage: the PostgreSQL repository and the in-memory store
//   - auth, audit, config, metrics, telemetry, validation, sanitize: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
