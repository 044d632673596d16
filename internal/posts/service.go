// Package posts implements the engagement engine: post CRUD with
// transactional counters, like/save toggles, comments, feeds and stats.
package posts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snapgram-app/backend/internal/apperror"
	"github.com/snapgram-app/backend/internal/media"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/pagination"
	"github.com/snapgram-app/backend/internal/tags"
)

type Service struct {
	db     *gorm.DB
	images media.ImageStore
	log    *zap.Logger
}

func NewService(db *gorm.DB, images media.ImageStore, log *zap.Logger) *Service {
	return &Service{db: db, images: images, log: log}
}

type CreateInput struct {
	CreatorID string
	Caption   string
	Location  string
	Tags      string
	ImageURL  string
	ImageID   string
}

type UpdateInput struct {
	Caption  string
	Location string
	Tags     string
	ImageURL string
	ImageID  string
}

// feedRow is the scan target for the enriched post queries.
type feedRow struct {
	ID           string
	CreatorID    string
	Caption      string
	Location     string
	ImageURL     string
	ImageID      string
	LikesCount   int
	CommentCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	HasLiked     bool
	HasSaved     bool
}

func (r feedRow) post() models.Post {
	return models.Post{
		ID:           r.ID,
		CreatorID:    r.CreatorID,
		Caption:      r.Caption,
		Location:     r.Location,
		ImageURL:     r.ImageURL,
		ImageID:      r.ImageID,
		LikesCount:   r.LikesCount,
		CommentCount: r.CommentCount,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Create resolves tags on the plain connection, then writes the post and
// its tag links in one transaction. On any failure the already-uploaded
// image is deleted best-effort so it does not leak in the media store.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.FeedPost, error) {
	tagIDs, err := tags.NewResolver(s.db).Resolve(ctx, in.Tags)
	if err != nil {
		s.cleanupImage(ctx, in.ImageID)
		s.log.Error("tag resolution failed", zap.Error(err))
		return nil, apperror.CreateFailed("post")
	}

	post := models.Post{
		ID:        uuid.New().String(),
		CreatorID: in.CreatorID,
		Caption:   in.Caption,
		Location:  in.Location,
		ImageURL:  in.ImageURL,
		ImageID:   in.ImageID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&post).Error; err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			link := models.PostTag{PostID: post.ID, TagID: tagID}
			if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.cleanupImage(ctx, in.ImageID)
		s.log.Error("post create failed", zap.String("creator_id", in.CreatorID), zap.Error(err))
		return nil, apperror.CreateFailed("post")
	}

	return s.GetByID(ctx, post.ID, in.CreatorID)
}

// Update rewrites caption and location, swaps the image when the client
// sent a new one, and replaces the tag set. Tag resolution runs on the
// transaction handle so a failed update leaves no half-replaced tag links.
func (s *Service) Update(ctx context.Context, postID string, in UpdateInput) (*models.FeedPost, error) {
	var existing models.Post
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post")
		}
		s.log.Error("post lookup failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.Persistence("post lookup")
	}

	imageReplaced := in.ImageURL != "" && in.ImageID != "" && in.ImageID != existing.ImageID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"caption":  in.Caption,
			"location": in.Location,
		}
		if imageReplaced {
			updates["image_url"] = in.ImageURL
			updates["image_id"] = in.ImageID
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		tagIDs, err := tags.NewResolver(tx).Resolve(ctx, in.Tags)
		if err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			link := models.PostTag{PostID: postID, TagID: tagID}
			if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("post update failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.UpdateFailed("post")
	}

	if imageReplaced && existing.ImageID != "" {
		s.cleanupImage(ctx, existing.ImageID)
	}

	return s.GetByID(ctx, postID, existing.CreatorID)
}

// Delete removes the post row; likes, saves, comments and tag links go with
// it through the schema's cascading foreign keys. The stored image is
// deleted best-effort first.
func (s *Service) Delete(ctx context.Context, postID string) error {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("post")
		}
		s.log.Error("post lookup failed", zap.String("post_id", postID), zap.Error(err))
		return apperror.Persistence("post lookup")
	}

	s.cleanupImage(ctx, post.ImageID)

	if err := s.db.WithContext(ctx).Where("id = ?", postID).Delete(&models.Post{}).Error; err != nil {
		s.log.Error("post delete failed", zap.String("post_id", postID), zap.Error(err))
		return apperror.Persistence("post delete")
	}
	return nil
}

// Like inserts the (user, post) row and bumps the counter in one
// transaction. A duplicate like rolls the whole thing back and surfaces as
// Conflict, so the counter can never run ahead of the rows.
func (s *Service) Like(ctx context.Context, userID, postID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("post")
		}
		like := models.Like{UserID: userID, PostID: postID}
		return tx.Omit(clause.Associations).Create(&like).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Conflict("post already liked")
	case errors.Is(err, apperror.ErrNotFound):
		return err
	default:
		s.log.Error("like failed", zap.String("post_id", postID), zap.Error(err))
		return apperror.Persistence("like")
	}
}

// Unlike is idempotent: the counter only moves when a row was actually
// removed, so unliking a post that was never liked is a no-op.
func (s *Service) Unlike(ctx context.Context, userID, postID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - ?", 1)).Error
	})
	if err != nil {
		s.log.Error("unlike failed", zap.String("post_id", postID), zap.Error(err))
		return apperror.Persistence("unlike")
	}
	return nil
}

// SavePost records a bookmark. Saves carry no counter on the post.
func (s *Service) SavePost(ctx context.Context, userID, postID string) error {
	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
		s.log.Error("post lookup failed", zap.String("post_id", postID), zap.Error(err))
		return apperror.Persistence("save")
	}
	if exists == 0 {
		return apperror.NotFound("post")
	}

	save := models.Save{UserID: userID, PostID: postID}
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&save).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Conflict("post already saved")
	default:
		s.log.Error("save failed", zap.String("post_id", postID), zap.Error(err))
		return apperror.Persistence("save")
	}
}

func (s *Service) UnsavePost(ctx context.Context, userID, postID string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Save{})
	if res.Error != nil {
		s.log.Error("unsave failed", zap.String("post_id", postID), zap.Error(res.Error))
		return apperror.Persistence("unsave")
	}
	return nil
}

// AddComment appends a comment and bumps the denormalized count in the
// same transaction.
func (s *Service) AddComment(ctx context.Context, postID, authorID, body string) (*models.CommentView, error) {
	comment := models.Comment{
		ID:       uuid.New().String(),
		PostID:   postID,
		AuthorID: authorID,
		Body:     body,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("post")
		}
		return tx.Omit(clause.Associations).Create(&comment).Error
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.log.Error("comment create failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.Persistence("comment create")
	}

	var view models.CommentView
	err = s.db.WithContext(ctx).Table("comments").
		Select("comments.id, comments.post_id, comments.author_id, comments.body, comments.created_at, users.name, users.username, users.image_url").
		Joins("JOIN users ON users.id = comments.author_id").
		Where("comments.id = ?", comment.ID).
		Scan(&view).Error
	if err != nil {
		s.log.Error("comment read-back failed", zap.String("comment_id", comment.ID), zap.Error(err))
		return nil, apperror.Persistence("comment read")
	}
	return &view, nil
}

// GetComments lists a post's comments newest-first, joined with the
// author's display fields.
func (s *Service) GetComments(ctx context.Context, postID string, cur pagination.Cursor) ([]models.CommentView, error) {
	var views []models.CommentView
	err := s.db.WithContext(ctx).Table("comments").
		Select("comments.id, comments.post_id, comments.author_id, comments.body, comments.created_at, users.name, users.username, users.image_url").
		Joins("JOIN users ON users.id = comments.author_id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC").
		Limit(cur.Limit()).Offset(cur.Offset()).
		Scan(&views).Error
	if err != nil {
		s.log.Error("comments query failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.Persistence("comments query")
	}

	pageNumber := pagination.PageNumber(cur.Offset(), cur.Limit())
	for i := range views {
		views[i].PageNumber = pageNumber
	}
	return views, nil
}

// GetStats returns the engagement snapshot for one post, relative to the
// viewer. Reading stats never mutates anything.
func (s *Service) GetStats(ctx context.Context, postID, viewerID string) (*models.PostStats, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post")
		}
		s.log.Error("post lookup failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.Persistence("stats query")
	}

	var liked, saved int64
	if err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", viewerID, postID).Count(&liked).Error; err != nil {
		s.log.Error("like lookup failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.Persistence("stats query")
	}
	if err := s.db.WithContext(ctx).Model(&models.Save{}).
		Where("user_id = ? AND post_id = ?", viewerID, postID).Count(&saved).Error; err != nil {
		s.log.Error("save lookup failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.Persistence("stats query")
	}

	return &models.PostStats{
		LikesCount:   post.LikesCount,
		CommentCount: post.CommentCount,
		HasLiked:     liked > 0,
		HasSaved:     saved > 0,
	}, nil
}

// GetFeed returns one reverse-chronological window with viewer flags.
// Page 0 is the newest window; windows never overlap for a fixed page size.
func (s *Service) GetFeed(ctx context.Context, viewerID string, cur pagination.Cursor) ([]models.FeedPost, error) {
	var rows []feedRow
	err := s.viewerQuery(ctx, viewerID).
		Order("posts.created_at DESC").
		Limit(cur.Limit()).Offset(cur.Offset()).
		Scan(&rows).Error
	if err != nil {
		s.log.Error("feed query failed", zap.Error(err))
		return nil, apperror.Persistence("feed query")
	}

	feed, err := s.enrich(ctx, rows)
	if err != nil {
		return nil, err
	}
	pageNumber := pagination.PageNumber(cur.Offset(), cur.Limit())
	for i := range feed {
		feed[i].PageNumber = pageNumber
	}
	return feed, nil
}

// GetAll returns every post, newest first, with viewer flags.
func (s *Service) GetAll(ctx context.Context, viewerID string) ([]models.FeedPost, error) {
	var rows []feedRow
	err := s.viewerQuery(ctx, viewerID).
		Order("posts.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		s.log.Error("posts query failed", zap.Error(err))
		return nil, apperror.Persistence("posts query")
	}
	return s.enrich(ctx, rows)
}

// GetByID loads one enriched post.
func (s *Service) GetByID(ctx context.Context, postID, viewerID string) (*models.FeedPost, error) {
	var rows []feedRow
	err := s.viewerQuery(ctx, viewerID).
		Where("posts.id = ?", postID).
		Scan(&rows).Error
	if err != nil {
		s.log.Error("post query failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.Persistence("post query")
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("post")
	}

	feed, err := s.enrich(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &feed[0], nil
}

// PostsForUser lists a user's own posts, newest first.
func (s *Service) PostsForUser(ctx context.Context, userID, viewerID string, cur pagination.Cursor) ([]models.FeedPost, error) {
	var rows []feedRow
	err := s.viewerQuery(ctx, viewerID).
		Where("posts.creator_id = ?", userID).
		Order("posts.created_at DESC").
		Limit(cur.Limit()).Offset(cur.Offset()).
		Scan(&rows).Error
	if err != nil {
		s.log.Error("user posts query failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Persistence("user posts query")
	}
	return s.enrich(ctx, rows)
}

// PostsLikedBy lists the posts a user has liked.
func (s *Service) PostsLikedBy(ctx context.Context, userID string, cur pagination.Cursor) ([]models.FeedPost, error) {
	var rows []feedRow
	err := s.viewerQuery(ctx, userID).
		Joins("JOIN likes fl ON fl.post_id = posts.id AND fl.user_id = ?", userID).
		Order("posts.created_at DESC").
		Limit(cur.Limit()).Offset(cur.Offset()).
		Scan(&rows).Error
	if err != nil {
		s.log.Error("liked posts query failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Persistence("liked posts query")
	}
	return s.enrich(ctx, rows)
}

// PostsSavedBy lists a user's bookmarks.
func (s *Service) PostsSavedBy(ctx context.Context, userID string, cur pagination.Cursor) ([]models.FeedPost, error) {
	var rows []feedRow
	err := s.viewerQuery(ctx, userID).
		Joins("JOIN saves fs ON fs.post_id = posts.id AND fs.user_id = ?", userID).
		Order("posts.created_at DESC").
		Limit(cur.Limit()).Offset(cur.Offset()).
		Scan(&rows).Error
	if err != nil {
		s.log.Error("saved posts query failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Persistence("saved posts query")
	}
	return s.enrich(ctx, rows)
}

// CreatorOf returns the post's creator id. It reads the bare row, skipping
// the enrichment joins, so ownership checks stay cheap.
func (s *Service) CreatorOf(ctx context.Context, postID string) (string, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Select("creator_id").First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.NotFound("post")
		}
		s.log.Error("post lookup failed", zap.String("post_id", postID), zap.Error(err))
		return "", apperror.Persistence("post lookup")
	}
	return post.CreatorID, nil
}

// LikeUserIDs returns the ids of every user who liked the post.
func (s *Service) LikeUserIDs(ctx context.Context, postID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).
		Pluck("user_id", &ids).Error
	if err != nil {
		s.log.Error("likes query failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.Persistence("likes query")
	}
	return ids, nil
}

// SaveUserIDs returns the ids of every user who saved the post.
func (s *Service) SaveUserIDs(ctx context.Context, postID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Save{}).
		Where("post_id = ?", postID).
		Pluck("user_id", &ids).Error
	if err != nil {
		s.log.Error("saves query failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.Persistence("saves query")
	}
	return ids, nil
}

// viewerQuery is the base for every enriched read: posts with has_liked and
// has_saved computed relative to the viewer through two left joins.
func (s *Service) viewerQuery(ctx context.Context, viewerID string) *gorm.DB {
	return s.db.WithContext(ctx).Table("posts").
		Select("posts.*, l.user_id IS NOT NULL AS has_liked, sv.user_id IS NOT NULL AS has_saved").
		Joins("LEFT JOIN likes l ON l.post_id = posts.id AND l.user_id = ?", viewerID).
		Joins("LEFT JOIN saves sv ON sv.post_id = posts.id AND sv.user_id = ?", viewerID)
}

func (s *Service) enrich(ctx context.Context, rows []feedRow) ([]models.FeedPost, error) {
	feed := make([]models.FeedPost, 0, len(rows))
	for _, row := range rows {
		var creator models.UserSummary
		err := s.db.WithContext(ctx).Model(&models.User{}).
			Select("id, name, username, image_url").
			Where("id = ?", row.CreatorID).
			Scan(&creator).Error
		if err != nil {
			s.log.Error("creator lookup failed", zap.String("user_id", row.CreatorID), zap.Error(err))
			return nil, apperror.Persistence("creator lookup")
		}

		names, err := s.tagNames(ctx, row.ID)
		if err != nil {
			return nil, err
		}

		feed = append(feed, models.FeedPost{
			Post:     row.post(),
			Creator:  creator,
			Tags:     names,
			HasLiked: row.HasLiked,
			HasSaved: row.HasSaved,
		})
	}
	return feed, nil
}

func (s *Service) tagNames(ctx context.Context, postID string) ([]string, error) {
	names := []string{}
	err := s.db.WithContext(ctx).Table("tags").
		Joins("JOIN posts_tags ON posts_tags.tag_id = tags.id").
		Where("posts_tags.post_id = ?", postID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	if err != nil {
		s.log.Error("tag names query failed", zap.String("post_id", postID), zap.Error(err))
		return nil, apperror.Persistence("tag names query")
	}
	return names, nil
}

// cleanupImage deletes a stored image best-effort; a failure is logged and
// swallowed because the database is already in its final state.
func (s *Service) cleanupImage(ctx context.Context, imageID string) {
	if imageID == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, imageID); err != nil {
		s.log.Warn("image cleanup failed", zap.String("image_id", imageID), zap.Error(err))
	}
}
