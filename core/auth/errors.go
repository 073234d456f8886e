package auth

import "errors"

// Expected login failures. Handlers surface these to the user as a
// redirect-with-reason; anything else is a server error.
var (
	// ErrNoSuchUser means no account is registered under the email.
	ErrNoSuchUser = errors.New("no such user")

	// ErrWrongPassword means the account exists but the password does not match.
	ErrWrongPassword = errors.New("wrong password")

	// ErrWrongCredentialMethod means the account was created through an OAuth
	// provider and has no local password to check against.
	ErrWrongCredentialMethod = errors.New("account has no local credentials")
)
