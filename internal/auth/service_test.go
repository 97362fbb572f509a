package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"resumai/internal/common"
	"resumai/internal/repository"
)

type stubVerifier struct {
	identity *GoogleIdentity
	err      error
}

func (s *stubVerifier) Verify(context.Context, string) (*GoogleIdentity, error) {
	return s.identity, s.err
}

func newTestService(t *testing.T, verifier TokenVerifier) *Service {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, common.DatabaseConfig{
		DSN:          filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		DialTimeout:  3 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close(nil) })
	if err := repository.Migrate(ctx, db, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	users := repository.NewUserRepository(db, nil)
	return NewService(verifier, NewSessions("test-secret", time.Hour), users, nil)
}

func TestSignInProvisionsUser(t *testing.T) {
	svc := newTestService(t, &stubVerifier{identity: &GoogleIdentity{
		Subject: "google-sub-1",
		Email:   "jane@example.com",
		Name:    "Jane Doe",
		Picture: "https://example.com/p.png",
	}})

	user, token, err := svc.SignIn(context.Background(), "google-id-token")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if user.ID != "google-sub-1" || user.Email != "jane@example.com" {
		t.Fatalf("user = %+v", user)
	}
	if user.Picture == nil || *user.Picture != "https://example.com/p.png" {
		t.Fatalf("picture = %v", user.Picture)
	}

	got, err := svc.CurrentUser(context.Background(), token)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("resolved user = %q, want %q", got.ID, user.ID)
	}
}

func TestSignInRejectedToken(t *testing.T) {
	svc := newTestService(t, &stubVerifier{err: common.WrapError(common.ErrUnauthorized, "bad token")})

	if _, _, err := svc.SignIn(context.Background(), "bad"); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestSignInUpdatesProfile(t *testing.T) {
	verifier := &stubVerifier{identity: &GoogleIdentity{Subject: "sub", Email: "a@example.com", Name: "Old Name"}}
	svc := newTestService(t, verifier)

	if _, _, err := svc.SignIn(context.Background(), "tok"); err != nil {
		t.Fatalf("first sign in: %v", err)
	}

	verifier.identity = &GoogleIdentity{Subject: "sub", Email: "a@example.com", Name: "New Name"}
	user, _, err := svc.SignIn(context.Background(), "tok")
	if err != nil {
		t.Fatalf("second sign in: %v", err)
	}
	if user.Name != "New Name" {
		t.Fatalf("name = %q, want New Name", user.Name)
	}
}
