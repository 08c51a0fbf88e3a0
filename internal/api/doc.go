// Package api provides the HTTP facade over the progress and analytics
// services. Handlers validate parameters, delegate, and translate service
// errors into sanitized HTTP responses; no business logic lives here.
package api
