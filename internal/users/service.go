// Package users covers accounts and the follow graph.
package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snapgram-app/backend/internal/apperror"
	"github.com/snapgram-app/backend/internal/media"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/pagination"
)

type Service struct {
	db     *gorm.DB
	images media.ImageStore
	log    *zap.Logger
}

func NewService(db *gorm.DB, images media.ImageStore, log *zap.Logger) *Service {
	return &Service{db: db, images: images, log: log}
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Phone    string
}

type UpdateInput struct {
	Name     string
	Username string
	Email    string
	Bio      string
	Phone    string
	ImageURL string
	ImageID  string
}

// Register creates an account with a bcrypt-hashed password. Username and
// email collisions surface as Conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("password hashing failed", zap.Error(err))
		return nil, apperror.CreateFailed("user")
	}

	user := models.User{
		ID:       uuid.New().String(),
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Phone:    in.Phone,
	}

	err = s.db.WithContext(ctx).Create(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, apperror.Conflict("username or email already taken")
	default:
		s.log.Error("user create failed", zap.Error(err))
		return nil, apperror.CreateFailed("user")
	}
}

// Authenticate checks the email/password pair. Failures are deliberately
// indistinguishable so the endpoint does not leak which emails exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthorized("invalid credentials")
	}
	if err != nil {
		s.log.Error("user lookup failed", zap.Error(err))
		return nil, apperror.Persistence("user lookup")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}
	return &user, nil
}

// GetByID loads a user with their follower and following id lists.
func (s *Service) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user")
	}
	if err != nil {
		s.log.Error("user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Persistence("user lookup")
	}
	return s.profile(ctx, user)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user")
	}
	if err != nil {
		s.log.Error("user lookup failed", zap.String("username", username), zap.Error(err))
		return nil, apperror.Persistence("user lookup")
	}
	return s.profile(ctx, user)
}

// List returns other users, newest first, excluding the requester.
func (s *Service) List(ctx context.Context, requesterID string, cur pagination.Cursor) ([]models.User, error) {
	users := []models.User{}
	err := s.db.WithContext(ctx).
		Where("id <> ?", requesterID).
		Order("created_at DESC").
		Limit(cur.Limit()).Offset(cur.Offset()).
		Find(&users).Error
	if err != nil {
		s.log.Error("users query failed", zap.Error(err))
		return nil, apperror.Persistence("users query")
	}
	return users, nil
}

// Update rewrites the profile fields. The image is replaced only when the
// client sent both a new URL and id and the id differs from the stored one;
// the previous image is then deleted best-effort.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*models.User, error) {
	var existing models.User
	err := s.db.WithContext(ctx).First(&existing, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user")
	}
	if err != nil {
		s.log.Error("user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Persistence("user lookup")
	}

	imageReplaced := in.ImageURL != "" && in.ImageID != "" && in.ImageID != existing.ImageID

	updates := map[string]any{
		"name":     in.Name,
		"username": in.Username,
		"email":    in.Email,
		"bio":      in.Bio,
		"phone":    in.Phone,
	}
	if imageReplaced {
		updates["image_url"] = in.ImageURL
		updates["image_id"] = in.ImageID
	}

	err = s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, apperror.Conflict("username or email already taken")
	case err != nil:
		s.log.Error("user update failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.UpdateFailed("user")
	}

	if imageReplaced && existing.ImageID != "" && s.images != nil {
		if derr := s.images.Delete(ctx, existing.ImageID); derr != nil {
			s.log.Warn("image cleanup failed", zap.String("image_id", existing.ImageID), zap.Error(derr))
		}
	}

	var updated models.User
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", userID).Error; err != nil {
		s.log.Error("user read-back failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Persistence("user lookup")
	}
	return &updated, nil
}

// Follow creates the directed edge. Following yourself is rejected and a
// duplicate edge surfaces as Conflict.
func (s *Service) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return apperror.Validation("cannot follow yourself")
	}

	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", followingID).Count(&exists).Error; err != nil {
		s.log.Error("user lookup failed", zap.String("user_id", followingID), zap.Error(err))
		return apperror.Persistence("follow")
	}
	if exists == 0 {
		return apperror.NotFound("user")
	}

	follow := models.Follow{FollowerID: followerID, FollowingID: followingID}
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&follow).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Conflict("already following")
	default:
		s.log.Error("follow failed", zap.String("following_id", followingID), zap.Error(err))
		return apperror.Persistence("follow")
	}
}

// Unfollow is idempotent; removing an edge that does not exist is a no-op.
func (s *Service) Unfollow(ctx context.Context, followerID, followingID string) error {
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		s.log.Error("unfollow failed", zap.String("following_id", followingID), zap.Error(res.Error))
		return apperror.Persistence("unfollow")
	}
	return nil
}

// Followers returns ids of users following userID.
func (s *Service) Followers(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		s.log.Error("followers query failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Persistence("followers query")
	}
	return ids, nil
}

// Following returns ids of users that userID follows.
func (s *Service) Following(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		s.log.Error("following query failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Persistence("following query")
	}
	return ids, nil
}

func (s *Service) profile(ctx context.Context, user models.User) (*models.Profile, error) {
	followers, err := s.Followers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.Following(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.Profile{User: user, Followers: followers, Following: following}, nil
}
