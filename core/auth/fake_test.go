package auth

import (
	"context"
	"errors"
	"fmt"

	"perch/model"
	"perch/repository"
	"perch/session"
)

// fakeUserRepo is an in-memory repository.UserRepository for tests.
type fakeUserRepo struct {
	users     map[int64]*model.User
	nextID    int64
	createErr error
	findErr   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*model.User{}, nextID: 1}
}

func (f *fakeUserRepo) add(u *model.User) *model.User {
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return repository.ErrDuplicateUser
		}
		if user.SNSID != nil && u.SNSID != nil && u.Provider == user.Provider && *u.SNSID == *user.SNSID {
			return repository.ErrDuplicateUser
		}
	}
	f.add(user)
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindBySNS(_ context.Context, provider, snsID string) (*model.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Provider == provider && u.SNSID != nil && *u.SNSID == snsID {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) AddFollowing(context.Context, int64, int64) error { return nil }
func (f *fakeUserRepo) RemoveFollowing(context.Context, int64, int64) error {
	return nil
}
func (f *fakeUserRepo) FollowerCount(context.Context, int64) (int64, error)  { return 0, nil }
func (f *fakeUserRepo) FollowingCount(context.Context, int64) (int64, error) { return 0, nil }
func (f *fakeUserRepo) FollowingIDs(context.Context, int64) ([]int64, error) { return nil, nil }

// memSessionStore is an in-memory session.Store for tests.
type memSessionStore struct {
	sessions map[string]int64
	nextID   int
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]int64{}}
}

func (m *memSessionStore) Create(_ context.Context, userID int64) (string, error) {
	m.nextID++
	token := fmt.Sprintf("tok-%d", m.nextID)
	m.sessions[token] = userID
	return token, nil
}

func (m *memSessionStore) Get(_ context.Context, token string) (int64, error) {
	userID, ok := m.sessions[token]
	if !ok {
		return 0, session.ErrNoSession
	}
	return userID, nil
}

func (m *memSessionStore) Destroy(_ context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

var errStoreDown = errors.New("store down")
