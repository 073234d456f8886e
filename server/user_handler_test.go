package server_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
)

func TestFollowTwiceLeavesOneEdge(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "a", "1234")
	target := env.register(t, "b@x.com", "b", "1234")
	cookie := env.login(t, "a@x.com", "1234")

	path := fmt.Sprintf("/user/%d/follow", target.ID)

	for i := 0; i < 2; i++ {
		w := env.postForm(path, nil, cookie)
		if w.Code != http.StatusOK {
			t.Fatalf("follow call %d status = %d, want 200", i+1, w.Code)
		}
		if w.Body.String() != "success" {
			t.Fatalf("follow call %d body = %q, want success", i+1, w.Body.String())
		}
	}

	count, _ := env.Store.FollowerCount(context.Background(), target.ID)
	if count != 1 {
		t.Fatalf("follower count = %d after double follow, want 1", count)
	}
}

func TestFollowMissingUser(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "a", "1234")
	cookie := env.login(t, "a@x.com", "1234")

	w := env.postForm("/user/9999/follow", nil, cookie)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if len(env.Store.edges) != 0 {
		t.Fatal("no edge may persist for a missing target")
	}
}

func TestFollowSelfRejected(t *testing.T) {
	env := newTestEnv(t)
	actor := env.register(t, "a@x.com", "a", "1234")
	cookie := env.login(t, "a@x.com", "1234")

	w := env.postForm(fmt.Sprintf("/user/%d/follow", actor.ID), nil, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(env.Store.edges) != 0 {
		t.Fatal("self-follow must not persist an edge")
	}
}

func TestFollowRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	target := env.register(t, "b@x.com", "b", "1234")

	w := env.postForm(fmt.Sprintf("/user/%d/follow", target.ID), nil, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestFollowIgnoresForgedCookie(t *testing.T) {
	env := newTestEnv(t)
	target := env.register(t, "b@x.com", "b", "1234")

	forged := &http.Cookie{Name: "perch_sid", Value: "tok-1.bm90LWEtcmVhbC1zaWc"}
	w := env.postForm(fmt.Sprintf("/user/%d/follow", target.ID), nil, forged)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for a forged cookie", w.Code)
	}
}

func TestUnfollowRemovesEdge(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "a", "1234")
	target := env.register(t, "b@x.com", "b", "1234")
	cookie := env.login(t, "a@x.com", "1234")

	if w := env.postForm(fmt.Sprintf("/user/%d/follow", target.ID), nil, cookie); w.Code != http.StatusOK {
		t.Fatalf("follow status = %d, want 200", w.Code)
	}
	if w := env.postForm(fmt.Sprintf("/user/%d/unfollow", target.ID), nil, cookie); w.Code != http.StatusOK {
		t.Fatalf("unfollow status = %d, want 200", w.Code)
	}
	if len(env.Store.edges) != 0 {
		t.Fatal("edge survived unfollow")
	}
}
