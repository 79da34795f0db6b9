package flows

import (
	"context"
	"errors"
	"testing"
	"time"
)

func workingRefreshDeps(live map[string]bool) RefreshDeps {
	return RefreshDeps{
		IsRefreshKind: func(string) (bool, error) { return true, nil },
		Subject:       func(string) (string, error) { return "alice@example.com", nil },
		Verify:        func(string, string) bool { return true },
		DeleteRefresh: func(_ context.Context, token string) (bool, error) {
			existed := live[token]
			delete(live, token)
			return existed, nil
		},
		SaveRefresh: func(_ context.Context, token string, _ time.Duration) error {
			live[token] = true
			return nil
		},
		IssueAccess:  func(subject string) (string, error) { return "access-for-" + subject, nil },
		IssueRefresh: func(subject string) (string, error) { return "refresh-for-" + subject, nil },
		RefreshTTL:   func() time.Duration { return time.Hour },
	}
}

func TestRunRefreshSuccess(t *testing.T) {
	live := map[string]bool{"old-token": true}

	result := RunRefresh(context.Background(), "old-token", workingRefreshDeps(live))
	if result.Failure != RefreshFailureNone {
		t.Fatalf("unexpected failure %d (err=%v)", result.Failure, result.Err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("incomplete pair returned")
	}
	if live["old-token"] {
		t.Fatal("consumed token still live")
	}
	if !live[result.RefreshToken] {
		t.Fatal("replacement token not recorded")
	}
}

func TestRunRefreshClassification(t *testing.T) {
	codecErr := errors.New("bad token")

	cases := []struct {
		name   string
		token  string
		mutate func(*RefreshDeps)
		want   RefreshFailureKind
	}{
		{
			name:   "empty token",
			token:  "   ",
			mutate: func(*RefreshDeps) {},
			want:   RefreshFailureEmpty,
		},
		{
			name:  "malformed",
			token: "old-token",
			mutate: func(d *RefreshDeps) {
				d.IsRefreshKind = func(string) (bool, error) { return false, codecErr }
			},
			want: RefreshFailureMalformed,
		},
		{
			name:  "access kind",
			token: "old-token",
			mutate: func(d *RefreshDeps) {
				d.IsRefreshKind = func(string) (bool, error) { return false, nil }
			},
			want: RefreshFailureKindMismatch,
		},
		{
			name:  "verify fails",
			token: "old-token",
			mutate: func(d *RefreshDeps) {
				d.Verify = func(string, string) bool { return false }
			},
			want: RefreshFailureVerify,
		},
		{
			name:   "already consumed",
			token:  "never-saved",
			mutate: func(*RefreshDeps) {},
			want:   RefreshFailureConsumed,
		},
		{
			name:  "store outage on delete",
			token: "old-token",
			mutate: func(d *RefreshDeps) {
				d.DeleteRefresh = func(context.Context, string) (bool, error) {
					return false, errors.New("store down")
				}
			},
			want: RefreshFailureStore,
		},
		{
			name:  "signing failure",
			token: "old-token",
			mutate: func(d *RefreshDeps) {
				d.IssueAccess = func(string) (string, error) { return "", errors.New("sign failed") }
			},
			want: RefreshFailureIssue,
		},
		{
			name:  "store outage on save",
			token: "old-token",
			mutate: func(d *RefreshDeps) {
				d.SaveRefresh = func(context.Context, string, time.Duration) error {
					return errors.New("store down")
				}
			},
			want: RefreshFailureStore,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := workingRefreshDeps(map[string]bool{"old-token": true})
			tc.mutate(&deps)

			result := RunRefresh(context.Background(), tc.token, deps)
			if result.Failure != tc.want {
				t.Fatalf("got failure %d, want %d", result.Failure, tc.want)
			}
			if result.AccessToken != "" || result.RefreshToken != "" {
				t.Fatal("failed rotation must not return tokens")
			}
		})
	}
}

func TestRunAuthenticateClassification(t *testing.T) {
	deps := AuthenticateDeps{
		IsRefreshKind: func(token string) (bool, error) { return token == "refresh-token", nil },
		Subject:       func(string) (string, error) { return "alice@example.com", nil },
		Verify:        func(string, string) bool { return true },
	}

	if result := RunAuthenticate(context.Background(), "access-token", deps); result.Failure != AuthenticateFailureNone {
		t.Fatalf("valid token: unexpected failure %d", result.Failure)
	} else if result.Subject != "alice@example.com" {
		t.Fatalf("unexpected subject %q", result.Subject)
	}

	if result := RunAuthenticate(context.Background(), "refresh-token", deps); result.Failure != AuthenticateFailureRefreshKind {
		t.Fatalf("refresh token: got failure %d", result.Failure)
	}

	deps.Verify = func(string, string) bool { return false }
	if result := RunAuthenticate(context.Background(), "access-token", deps); result.Failure != AuthenticateFailureVerify {
		t.Fatalf("unverifiable token: got failure %d", result.Failure)
	}
}
