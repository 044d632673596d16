package users

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/snapgram-app/backend/internal/apperror"
	"github.com/snapgram-app/backend/internal/database"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/pagination"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A second pooled connection would see its own empty :memory: database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, nil, zap.NewNop()), db
}

func register(t *testing.T, svc *Service, username string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, db := newTestService(t)

	user := register(t, svc, "ansel")

	var stored models.User
	if err := db.First(&stored, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.Password == "correct horse battery" {
		t.Fatal("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct horse battery")) != nil {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "ansel")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Other",
		Username: "ansel",
		Email:    "other@example.com",
		Password: "another password",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	user := register(t, svc, "ansel")
	ctx := context.Background()

	got, err := svc.Authenticate(ctx, "ansel@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated id = %s, want %s", got.ID, user.ID)
	}

	if _, err := svc.Authenticate(ctx, "ansel@example.com", "wrong"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("wrong password err = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "whatever"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("unknown email err = %v, want ErrUnauthorized", err)
	}
}

func TestFollowGraph(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ansel := register(t, svc, "ansel")
	brook := register(t, svc, "brook")

	if err := svc.Follow(ctx, brook.ID, ansel.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	profile, err := svc.GetByID(ctx, ansel.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(profile.Followers) != 1 || profile.Followers[0] != brook.ID {
		t.Errorf("followers = %v, want [%s]", profile.Followers, brook.ID)
	}
	if len(profile.Following) != 0 {
		t.Errorf("following = %v, want empty", profile.Following)
	}

	brookProfile, err := svc.GetByID(ctx, brook.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(brookProfile.Following) != 1 || brookProfile.Following[0] != ansel.ID {
		t.Errorf("following = %v, want [%s]", brookProfile.Following, ansel.ID)
	}
}

func TestFollowRejectsSelfAndDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ansel := register(t, svc, "ansel")
	brook := register(t, svc, "brook")

	if err := svc.Follow(ctx, ansel.ID, ansel.ID); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("self-follow err = %v, want ErrValidation", err)
	}

	if err := svc.Follow(ctx, brook.ID, ansel.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if err := svc.Follow(ctx, brook.ID, ansel.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate follow err = %v, want ErrConflict", err)
	}

	if err := svc.Follow(ctx, brook.ID, "missing-user"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("follow missing err = %v, want ErrNotFound", err)
	}
}

func TestUnfollowIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ansel := register(t, svc, "ansel")
	brook := register(t, svc, "brook")

	if err := svc.Unfollow(ctx, brook.ID, ansel.ID); err != nil {
		t.Fatalf("Unfollow with no edge: %v", err)
	}

	if err := svc.Follow(ctx, brook.ID, ansel.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if err := svc.Unfollow(ctx, brook.ID, ansel.ID); err != nil {
		t.Fatalf("Unfollow: %v", err)
	}

	followers, err := svc.Followers(ctx, ansel.ID)
	if err != nil {
		t.Fatalf("Followers: %v", err)
	}
	if len(followers) != 0 {
		t.Errorf("followers = %v, want empty", followers)
	}
}

func TestListExcludesRequester(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ansel := register(t, svc, "ansel")
	register(t, svc, "brook")
	register(t, svc, "casey")

	list, err := svc.List(ctx, ansel.ID, pagination.Cursor{PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list len = %d, want 2", len(list))
	}
	for _, u := range list {
		if u.ID == ansel.ID {
			t.Error("requester appeared in their own listing")
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ansel := register(t, svc, "ansel")

	updated, err := svc.Update(ctx, ansel.ID, UpdateInput{
		Name:     "Ansel A.",
		Username: "ansel",
		Email:    "ansel@example.com",
		Bio:      "chasing light",
		ImageURL: "https://cdn.example.com/avatar.jpg",
		ImageID:  "avatar-1",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Bio != "chasing light" || updated.Name != "Ansel A." {
		t.Errorf("updated = %+v", updated)
	}
	if updated.ImageID != "avatar-1" {
		t.Errorf("image_id = %q, want avatar-1", updated.ImageID)
	}

	if _, err := svc.Update(ctx, "missing", UpdateInput{Name: "x", Username: "x", Email: "x@example.com"}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("update missing err = %v, want ErrNotFound", err)
	}
}

func TestUpdateConflictingUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ansel := register(t, svc, "ansel")
	register(t, svc, "brook")

	_, err := svc.Update(ctx, ansel.ID, UpdateInput{
		Name:     "Ansel",
		Username: "brook",
		Email:    "ansel@example.com",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}
