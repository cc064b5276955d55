// Package session provides the server-side session storage behind the auth
// engine's SessionStore contract: a redis-backed implementation for
// deployments and an in-memory one for embedded use and tests. A Manager
// opens request-scoped session handles keyed by the caller's session
// identifier; regenerating the identifier moves the stored entries and
// notifies the transport so it can re-issue the session cookie.
package session
