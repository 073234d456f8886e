package auth

import (
	"context"
	"errors"
	"testing"

	"perch/model"
)

func registeredRepo(t *testing.T) *fakeUserRepo {
	t.Helper()
	repo := newFakeUserRepo()

	hash, err := HashPassword("1234")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	email := "test@x.com"
	repo.add(&model.User{Email: &email, Nick: "junny", Password: hash, Provider: model.ProviderLocal})

	kakaoEmail := "sns@x.com"
	snsID := "99887766"
	repo.add(&model.User{Email: &kakaoEmail, Nick: "sns", Provider: model.ProviderKakao, SNSID: &snsID})

	return repo
}

func TestVerifySuccess(t *testing.T) {
	v := NewVerifier(registeredRepo(t))

	user, err := v.Verify(context.Background(), "test@x.com", "1234")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.Nick != "junny" {
		t.Errorf("got nick %q, want junny", user.Nick)
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	v := NewVerifier(registeredRepo(t))

	_, err := v.Verify(context.Background(), "test@x.com", "454545")
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("got %v, want ErrWrongPassword", err)
	}
}

func TestVerifyUnregisteredEmail(t *testing.T) {
	v := NewVerifier(registeredRepo(t))

	_, err := v.Verify(context.Background(), "nobody@x.com", "1234")
	if !errors.Is(err, ErrNoSuchUser) {
		t.Fatalf("got %v, want ErrNoSuchUser", err)
	}
}

func TestVerifyOAuthOnlyAccount(t *testing.T) {
	v := NewVerifier(registeredRepo(t))

	_, err := v.Verify(context.Background(), "sns@x.com", "1234")
	if !errors.Is(err, ErrWrongCredentialMethod) {
		t.Fatalf("got %v, want ErrWrongCredentialMethod", err)
	}
}

func TestVerifyEmptyInputs(t *testing.T) {
	v := NewVerifier(registeredRepo(t))

	for _, pair := range [][2]string{{"", "1234"}, {"test@x.com", ""}, {"", ""}} {
		if _, err := v.Verify(context.Background(), pair[0], pair[1]); !errors.Is(err, ErrNoSuchUser) {
			t.Errorf("Verify(%q, %q) = %v, want ErrNoSuchUser", pair[0], pair[1], err)
		}
	}
}

func TestVerifyStoreFailurePropagates(t *testing.T) {
	repo := registeredRepo(t)
	repo.findErr = errStoreDown
	v := NewVerifier(repo)

	_, err := v.Verify(context.Background(), "test@x.com", "1234")
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("got %v, want wrapped store error", err)
	}
	for _, expected := range []error{ErrNoSuchUser, ErrWrongPassword, ErrWrongCredentialMethod} {
		if errors.Is(err, expected) {
			t.Errorf("store failure must not look like %v", expected)
		}
	}
}
