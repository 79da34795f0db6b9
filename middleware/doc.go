// Package middleware provides net/http integration for tokengate.
//
// [Authenticator] is deliberately permissive: it attaches an identity when
// a valid access token is presented and otherwise forwards the request
// unauthenticated. Routes that require a principal check the context with
// [tokengate.IdentityFromContext] and reject on absence. This keeps the
// "is authentication required here" decision at the route, where mixed
// public/protected APIs need it, instead of baking it into the filter.
package middleware
