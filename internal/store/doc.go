// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic: the event log of study records, the
// keyed progress aggregates, the material catalog boundary, and the
// best-effort audit log all live behind interfaces here so business
// rules stay independent of specific database technologies.
package store
