package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/learnit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	u := &types.User{Email: "userrepo@example.com", Username: "userrepo", Password: "pw"}
	if err := repo.Create(dbc, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == uuid.Nil || u.Role != types.RoleUser {
		t.Fatalf("Create: expected generated id and USER role, got %+v", u)
	}

	got, err := repo.GetByEmail(dbc, "  UserRepo@Example.com ")
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("GetByEmail: got=%v err=%v", got, err)
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", missing, err)
	}

	if exists, err := repo.EmailExists(dbc, u.Email, uuid.Nil); err != nil || !exists {
		t.Fatalf("EmailExists: exists=%v err=%v", exists, err)
	}
	if exists, err := repo.EmailExists(dbc, u.Email, u.ID); err != nil || exists {
		t.Fatalf("EmailExists(except self): exists=%v err=%v", exists, err)
	}
	if exists, err := repo.UsernameExists(dbc, "userrepo"); err != nil || !exists {
		t.Fatalf("UsernameExists: exists=%v err=%v", exists, err)
	}

	if err := repo.Create(dbc, &types.User{Email: "admin@example.com", Username: "admin", Password: "pw", Role: types.RoleAdmin}); err != nil {
		t.Fatalf("Create admin: %v", err)
	}
	if n, err := repo.CountByRole(dbc, types.RoleUser); err != nil || n != 1 {
		t.Fatalf("CountByRole: n=%d err=%v", n, err)
	}

	rows, total, err := repo.List(dbc, ListFilter{Search: "ADMIN", Page: 1, Limit: 10})
	if err != nil || total != 1 || len(rows) != 1 || rows[0].Username != "admin" {
		t.Fatalf("List(search): total=%d rows=%v err=%v", total, rows, err)
	}
	rows, total, err = repo.List(dbc, ListFilter{Role: types.RoleUser})
	if err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("List(role): total=%d err=%v", total, err)
	}

	if err := repo.UpdateFields(dbc, u.ID, map[string]any{"role": types.RoleAdmin}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, _ := repo.GetByID(dbc, u.ID); got == nil || got.Role != types.RoleAdmin {
		t.Fatalf("UpdateFields: role not applied: %+v", got)
	}
}

func TestProfileRepoEnsureIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	u := testutil.SeedUser(t, dbc.Ctx, db, "prof")
	repo := NewProfileRepo(db, testutil.Logger(t))

	first, err := repo.Ensure(dbc, u.ID, "Prof")
	if err != nil || first == nil {
		t.Fatalf("Ensure: got=%v err=%v", first, err)
	}
	second, err := repo.Ensure(dbc, u.ID, "Other")
	if err != nil || second == nil || second.ID != first.ID || second.Nickname != "Prof" {
		t.Fatalf("Ensure(again): got=%+v err=%v", second, err)
	}
	if err := repo.UpdateFields(dbc, u.ID, map[string]any{"bio": "hello"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ := repo.GetByUserID(dbc, u.ID)
	if got.Bio != "hello" {
		t.Fatalf("UpdateFields: bio=%q", got.Bio)
	}
}
