package flows

import (
	"context"
	"strings"
	"time"
)

// RefreshFailureKind classifies refresh rotation failures for root-level
// mapping. Consumed covers everything the caller must not be able to tell
// apart: never issued, expired out of the store, or already rotated.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureEmpty
	RefreshFailureMalformed
	RefreshFailureKindMismatch
	RefreshFailureVerify
	RefreshFailureConsumed
	RefreshFailureStore
	RefreshFailureIssue
)

// RefreshResult carries either the freshly issued pair or failure metadata.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	Subject      string
	AccessToken  string
	RefreshToken string
}

// RefreshDeps captures refresh rotation dependencies.
type RefreshDeps struct {
	IsRefreshKind func(tokenStr string) (bool, error)
	Subject       func(tokenStr string) (string, error)
	Verify        func(tokenStr, subject string) bool
	DeleteRefresh func(ctx context.Context, tokenStr string) (existed bool, err error)
	SaveRefresh   func(ctx context.Context, tokenStr string, ttl time.Duration) error
	IssueAccess   func(subject string) (string, error)
	IssueRefresh  func(subject string) (string, error)
	RefreshTTL    func() time.Duration
	Warn          func(string, ...any)
}

// RunRefresh executes single-use rotation: validate the presented token,
// atomically consume its store record, then issue and record a new pair.
//
// The delete's existed flag is the rotation authority. Store DEL is atomic
// per key, so when two rotations race on the same token exactly one sees
// existed=true; the other reports the token consumed. If recording the new
// token fails after the old record was consumed, the whole rotation fails
// and no tokens are returned; the client must authenticate again rather
// than hold a pair the store never heard of.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}

	if strings.TrimSpace(refreshToken) == "" {
		return RefreshResult{Failure: RefreshFailureEmpty}
	}

	isRefresh, err := deps.IsRefreshKind(refreshToken)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureMalformed, Err: err}
	}
	if !isRefresh {
		return RefreshResult{Failure: RefreshFailureKindMismatch}
	}

	subject, err := deps.Subject(refreshToken)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureMalformed, Err: err}
	}

	if !deps.Verify(refreshToken, subject) {
		return RefreshResult{Failure: RefreshFailureVerify, Subject: subject}
	}

	existed, err := deps.DeleteRefresh(ctx, refreshToken)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureStore, Err: err, Subject: subject}
	}
	if !existed {
		return RefreshResult{Failure: RefreshFailureConsumed, Subject: subject}
	}

	access, err := deps.IssueAccess(subject)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureIssue, Err: err, Subject: subject}
	}

	next, err := deps.IssueRefresh(subject)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureIssue, Err: err, Subject: subject}
	}

	if err := deps.SaveRefresh(ctx, next, deps.RefreshTTL()); err != nil {
		deps.Warn("tokengate: refresh rotation consumed old token but could not record replacement")
		return RefreshResult{Failure: RefreshFailureStore, Err: err, Subject: subject}
	}

	return RefreshResult{
		Failure:      RefreshFailureNone,
		Subject:      subject,
		AccessToken:  access,
		RefreshToken: next,
	}
}
