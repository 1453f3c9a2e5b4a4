// Package runstore houses persistence for completed run results. The Store
// interface keeps callers independent of concrete storage; InMemoryStore is
// the process-local implementation. Additional backends (Redis, Postgres,
// etc.) belong in sub-packages without changing any calling code.
package runstore
