package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer token.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes the token inside the Authorization header.
	BearerScheme = "Bearer "

	// RequestIDHeaderName echoes the per-request id back to the caller.
	RequestIDHeaderName = "X-Request-ID"
)
