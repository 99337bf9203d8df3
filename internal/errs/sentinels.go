package errs

// Sentinels for errors.Is checks. Only Code is compared, so these must not be
// returned directly: use the constructors, which fill in messages.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = &Error{Code: CodeNotFound}

	// ErrValidation indicates rejected input.
	ErrValidation = &Error{Code: CodeValidation}

	// ErrDatabase indicates a relational or key-value store failure.
	ErrDatabase = &Error{Code: CodeDatabase}

	// ErrInvalidCredentials indicates failed sign-in.
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials}

	// ErrTokenExpired indicates a token past its expiry.
	ErrTokenExpired = &Error{Code: CodeTokenExpired}

	// ErrInvalidToken indicates a token that failed verification.
	ErrInvalidToken = &Error{Code: CodeInvalidToken}

	// ErrEmailAlreadyExists indicates a unique email violation.
	ErrEmailAlreadyExists = &Error{Code: CodeEmailAlreadyExists}

	// ErrRateLimited indicates temporary sign-in lock due to rate limiting.
	ErrRateLimited = &Error{Code: CodeRateLimited}
)
