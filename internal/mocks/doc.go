// Package mocks provides centralized mock implementations for testing.
//
// Each mock pairs a map-backed default implementation with per-method
// function fields. Tests that only need a working store use the defaults;
// tests that script failures (conflicts, storage errors) set the Fn field
// for the method under test.
//
//	progressStore := mocks.NewMockProgressStore()
//	progressStore.UpdateFn = func(ctx context.Context, p *domain.Progress, expected time.Time) error {
//	    return store.ErrConflict
//	}
//
// The mocks are safe for concurrent use.
package mocks
