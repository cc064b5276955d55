// Package auth implements site-scoped (multi-tenant) authentication:
// password login, session lifecycle, remember-me auto-login with rotating
// tokens, forced administrative login, and permission-based authorization.
//
// The package owns no persistent state. A shared, immutable [Authenticator]
// is constructed once at startup; each request binds it to that caller's
// session store, cookie jar and user-agent string via [Authenticator.Request],
// producing a per-request [Engine]. All persistence and transport concerns
// are behind the [SessionStore], [CookieJar], [UserStore] and [TokenStore]
// contracts.
package auth
