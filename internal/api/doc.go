// Package api implements the displayhub HTTP API.
//
// This package provides:
//   - Account endpoints: register, login, refresh, logout, me, activity
//   - Display endpoints: firmware registration, pairing, disconnect, get, list, update
//   - Bearer token authentication middleware
//   - Middleware stack (request ID, logging, recovery, CORS, body size limit)
//   - TLS support for production deployments
//
// # Architecture
//
// Handlers are thin: they decode JSON, call auth.Service or device.Service,
// and map the returned sentinel errors to HTTP status codes in one place
// (errors.go). Side effects that must never fail a request (audit trail,
// telemetry) are queued or fire-and-forget.
//
// # Security
//
// Protected routes require "Authorization: Bearer <access token>". The
// token is verified locally; no store lookup is made. Display registration
// is authenticated by the X-Device-Secret header instead. Internal errors
// are logged with the request ID and reported to the client generically.
package api
