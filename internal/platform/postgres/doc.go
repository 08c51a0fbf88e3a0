// Package postgres contains the PostgreSQL implementations of the store
// interfaces: the append-only study record log, the progress aggregate store
// with optimistic concurrency, the material catalog lookup, and the
// best-effort audit log.
package postgres
