package secret

import "errors"

var (
	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("secret: missing environment variable")

	// ErrInvalidRef indicates a malformed secretref value.
	ErrInvalidRef = errors.New("secret: invalid secret reference")

	// ErrProviderNotFound indicates the reference names an unknown provider.
	ErrProviderNotFound = errors.New("secret: provider not found")

	// ErrDuplicateProvider indicates a provider name was registered twice.
	ErrDuplicateProvider = errors.New("secret: provider already registered")

	// ErrSecretNotFound indicates the provider has no value for the reference.
	ErrSecretNotFound = errors.New("secret: secret not found")

	// ErrEmptySecret indicates a strict resolver received an empty value.
	ErrEmptySecret = errors.New("secret: empty secret value")
)
