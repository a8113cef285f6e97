// Package model defines the roster scheduling domain: organizations, people,
// teams, resources, events, availability, holidays, constraints, and the
// assignments/metrics/violations a solve produces.
//
// Every entity here is a plain value type. Nothing in this package owns a
// database connection, a clock, or mutable process-wide state — loading and
// persisting these values is the responsibility of internal/storage, and a
// solve's working state lives entirely inside internal/solver.
package model
