package common

// SessionTokenHeaderName is the HTTP header carrying the session token issued
// after a successful Google sign-in.
const SessionTokenHeaderName = "Authorization"

// BearerPrefix precedes the session token in SessionTokenHeaderName.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is echoed on every HTTP response.
const RequestIDHeaderName = "X-Request-ID"
