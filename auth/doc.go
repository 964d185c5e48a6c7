// Package auth provides stateless bearer-token authentication and
// method+path authorization for HTTP services.
//
// A request flows through three stages:
//
//  1. Gate: applies the CORS policy, reads the Authorization header,
//     validates the JWT and attaches a Principal to the request context.
//     Missing or invalid tokens leave the request anonymous; the gate never
//     writes an error response.
//  2. Enforce: evaluates the ordered Policy for the method and path. The
//     first matching rule decides. Anonymous callers that need a principal
//     get 401, authenticated callers without a required role get 403.
//  3. The handler, which reads the principal with PrincipalFromContext.
//
// The only shared state is the verification key and the rule table, both
// read-only after construction.
package auth
