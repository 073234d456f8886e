package auth

import (
	"context"
	"fmt"

	"perch/model"
	"perch/repository"
)

// Verifier validates local email/password credentials against stored hashes.
// It establishes no session; that is the caller's job.
type Verifier struct {
	users repository.UserRepository
}

// NewVerifier creates a Verifier.
func NewVerifier(users repository.UserRepository) *Verifier {
	return &Verifier{users: users}
}

// Verify checks the credential pair and returns the matching user.
// Expected failures are ErrNoSuchUser, ErrWrongCredentialMethod and
// ErrWrongPassword; any other error is a store failure.
func (v *Verifier) Verify(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, ErrNoSuchUser
	}

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}
	if user == nil {
		return nil, ErrNoSuchUser
	}
	if !user.HasLocalPassword() {
		// OAuth-only account; there is no hash to compare against.
		return nil, ErrWrongCredentialMethod
	}
	if !CheckPasswordHash(password, user.Password) {
		return nil, ErrWrongPassword
	}
	return user, nil
}
