package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
	pkgAuth "github.com/polkiloo/autotransit/internal/pkg/auth"
	"github.com/polkiloo/autotransit/internal/test"
)

func newAuthUseCase(store *test.MemoryStore) *AuthUseCase {
	strategy := test.StrategyStub{IssueFn: func(a model.Actor) (string, error) {
		return "token-" + string(a.Role), nil
	}}
	return NewAuthUseCase(store, test.HasherStub{}, strategy, discardLogger())
}

func TestAuthUseCase_Register(t *testing.T) {
	store := test.NewMemoryStore()
	uc := newAuthUseCase(store)

	usr, token, err := uc.Register(context.Background(), model.Registration{Login: "  alice ", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if usr.Login != "alice" || usr.Role != model.RoleClient || usr.PasswordHash != "hash:secret1" {
		t.Fatalf("unexpected user %+v", usr)
	}
	if token != "token-client" {
		t.Fatalf("unexpected token %q", token)
	}

	if _, _, err := uc.Register(context.Background(), model.Registration{Login: "alice", Password: "secret1"}); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	driver, token, err := uc.Register(context.Background(), model.Registration{Login: "bob", Password: "secret1", Role: model.RoleDriver, Phone: "+4915112345678"})
	if err != nil || driver.Role != model.RoleDriver || token != "token-driver" {
		t.Fatalf("expected driver registration, got %+v %q (%v)", driver, token, err)
	}
}

func TestAuthUseCase_RegisterValidation(t *testing.T) {
	uc := newAuthUseCase(test.NewMemoryStore())

	cases := []struct {
		name string
		in   model.Registration
	}{
		{"short login", model.Registration{Login: "ab", Password: "secret1"}},
		{"short password", model.Registration{Login: "alice", Password: "123"}},
		{"admin role", model.Registration{Login: "alice", Password: "secret1", Role: model.RoleAdmin}},
		{"bad email", model.Registration{Login: "alice", Password: "secret1", Email: "nope"}},
		{"bad phone", model.Registration{Login: "alice", Password: "secret1", Phone: "0151"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := uc.Register(context.Background(), tc.in); !errors.Is(err, domainErrors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAuthUseCase_Authenticate(t *testing.T) {
	store := test.NewMemoryStore()
	uc := newAuthUseCase(store)
	if _, _, err := uc.Register(context.Background(), model.Registration{Login: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, token, err := uc.Authenticate(context.Background(), "alice", "secret1"); err != nil || token == "" {
		t.Fatalf("expected token, got %q (%v)", token, err)
	}

	cases := []struct {
		name, login, password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown login", "carol", "secret1"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := uc.Authenticate(context.Background(), tc.login, tc.password); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
		})
	}
}

func TestAuthUseCase_ParseToken(t *testing.T) {
	want := model.Actor{ID: 9, Role: model.RoleDriver}
	uc := NewAuthUseCase(test.NewMemoryStore(), test.HasherStub{}, test.StrategyStub{
		ParseFn: func(token string) (model.Actor, error) {
			if token != "good" {
				return model.Actor{}, pkgAuth.ErrInvalidToken
			}
			return want, nil
		},
	}, discardLogger())

	if _, err := uc.ParseToken(""); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token for empty input, got %v", err)
	}
	got, err := uc.ParseToken("good")
	if err != nil || got != want {
		t.Fatalf("expected %+v, got %+v (%v)", want, got, err)
	}
}

func TestAuthUseCase_EnsureSuperAdmin(t *testing.T) {
	store := test.NewMemoryStore()
	uc := newAuthUseCase(store)
	ctx := context.Background()

	if err := uc.EnsureSuperAdmin(ctx, "", ""); err != nil {
		t.Fatalf("expected no-op without credentials, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := uc.EnsureSuperAdmin(ctx, "root", "rootpass"); err != nil {
			t.Fatalf("ensure super admin #%d: %v", i, err)
		}
	}

	usr, err := store.Users().GetByLogin(ctx, "root")
	if err != nil {
		t.Fatalf("get root: %v", err)
	}
	if usr.Role != model.RoleSuperAdmin {
		t.Fatalf("expected super admin, got %s", usr.Role)
	}
	if _, token, err := uc.Authenticate(ctx, "root", "rootpass"); err != nil || token != "token-super_admin" {
		t.Fatalf("expected root login, got %q (%v)", token, err)
	}
}
