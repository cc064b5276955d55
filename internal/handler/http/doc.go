// Package http exposes the authentication engine over a chi-routed HTTP
// surface: login, logout, session introspection, password self-service and
// a loopback-only administrative forced login.
package http
