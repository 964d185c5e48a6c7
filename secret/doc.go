// Package secret resolves configuration values that hold secret material,
// such as the token verification key.
//
// A value is first expanded with ExpandEnvStrict. If the result is a
// reference of the form
//
//	secretref:<provider>:<ref>
//
// it is handed to the named Provider. The built-in providers are "env"
// (ref is a variable name) and "file" (ref is a path, trailing newline
// trimmed). Anything else is returned as-is.
//
//	JWT_SECRET=secretref:file:/run/secrets/jwt
//	JWT_SECRET=secretref:env:GATEKEEPER_SIGNING_KEY
//	JWT_SECRET=${SIGNING_KEY}
//
// Providers never log or wrap secret values into errors.
package secret
