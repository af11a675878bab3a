package common

// AccessTokenHeaderName is the gRPC metadata key and HTTP header used to
// carry the access token on requests.
const AccessTokenHeaderName = "x-access-token"

// AuthorizationHeaderName carries "Bearer <token>" as an alternative to
// AccessTokenHeaderName.
const AuthorizationHeaderName = "authorization"

// AccessTokenQueryParam is the query parameter checked by the HTTP gateway
// when no header is present.
const AccessTokenQueryParam = "token"
