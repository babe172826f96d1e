package forum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/services"
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/Bdsolutionconsulting/linkhood/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PostTitleMaxLength = 100
	ContentMaxLength   = 2000
)

var ErrUnknownCategory = errors.New("unknown forum category")

type ForumService struct {
	db        *gorm.DB
	store     storage.Store
	filter    *services.ContentFilter
	maxUpload int64
	now       func() time.Time
}

func NewForumService(deps *apps.Deps) *ForumService {
	return &ForumService{
		db:        deps.DB,
		store:     deps.Store,
		filter:    deps.Filter,
		maxUpload: deps.MaxUpload(),
		now:       time.Now,
	}
}

type countRow struct {
	Name  string
	Total int64
}

// Categories returns every category with its live post count.
func (s *ForumService) Categories(ctx context.Context) ([]Category, error) {
	var rows []countRow
	if err := s.db.WithContext(ctx).Model(&Post{}).
		Select("category AS name, COUNT(*) AS total").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Name] = r.Total
	}

	out := make([]Category, len(Categories))
	for i, c := range Categories {
		c.PostCount = counts[c.ID]
		out[i] = c
	}
	return out, nil
}

// PostsByCategory lists a category's posts, newest first, each with its
// comment count and author name.
func (s *ForumService) PostsByCategory(ctx context.Context, categoryID string) (Category, []Post, error) {
	category, ok := LookupCategory(categoryID)
	if !ok {
		return category, nil, ErrUnknownCategory
	}

	posts := []Post{}
	if err := s.db.WithContext(ctx).Scopes(identity.WithAuthor).
		Where("category = ?", categoryID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return category, nil, fmt.Errorf("failed to list posts: %w", err)
	}
	category.PostCount = int64(len(posts))
	if len(posts) == 0 {
		return category, posts, nil
	}

	ids := make([]uuid.UUID, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	var rows []struct {
		PostID uuid.UUID
		Total  int64
	}
	if err := s.db.WithContext(ctx).Model(&Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return category, nil, fmt.Errorf("failed to count comments: %w", err)
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.PostID] = r.Total
	}

	for i := range posts {
		posts[i].AuthorName = posts[i].User.DisplayName()
		posts[i].CommentCount = counts[posts[i].ID]
	}
	return category, posts, nil
}

// GetPost returns a post with its comments, oldest first.
func (s *ForumService) GetPost(ctx context.Context, id uuid.UUID) (*PostDetail, error) {
	post, err := s.findPost(ctx, id, true)
	if err != nil {
		return nil, err
	}
	post.AuthorName = post.User.DisplayName()

	comments := []Comment{}
	if err := s.db.WithContext(ctx).Scopes(identity.WithAuthor).
		Where("post_id = ?", id).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	for i := range comments {
		comments[i].AuthorName = comments[i].User.DisplayName()
	}
	post.CommentCount = int64(len(comments))

	return &PostDetail{Post: post, Comments: comments}, nil
}

// CreatePost screens title and content, stores the optional photo under
// post-photos/<user>/<unix ms>.<ext>, then saves the post.
func (s *ForumService) CreatePost(ctx context.Context, actor identity.Actor, req CreatePostRequest, photo *apps.Photo) (*Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)

	if err := validation.Required("title", "Le titre", req.Title, PostTitleMaxLength); err != nil {
		return nil, err
	}
	if err := validation.Required("content", "Le contenu", req.Content, ContentMaxLength); err != nil {
		return nil, err
	}
	if err := validation.OneOf("category", req.Category, categoryIDs()); err != nil {
		return nil, err
	}
	if err := s.filter.Check(req.Title, req.Content); err != nil {
		return nil, err
	}

	post := &Post{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		UserID:   actor.ID,
	}

	if photo != nil {
		ext, err := storage.Extension(photo.ContentType)
		if err != nil {
			return nil, err
		}
		key := storage.PostPhotoKey(actor.ID.String(), ext, s.now())
		url, err := apps.SavePhoto(ctx, s.store, storage.BucketPostPhotos, key, photo, s.maxUpload)
		if err != nil {
			return nil, err
		}
		post.PhotoURL = url
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *ForumService) AddComment(ctx context.Context, actor identity.Actor, postID uuid.UUID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &validation.Error{Field: "content", Message: "Le commentaire ne peut pas être vide."}
	}
	if err := validation.Required("content", "Le commentaire", content, ContentMaxLength); err != nil {
		return nil, err
	}
	if err := s.filter.Check(content); err != nil {
		return nil, err
	}
	if _, err := s.findPost(ctx, postID, false); err != nil {
		return nil, err
	}

	comment := &Comment{PostID: postID, UserID: actor.ID, Content: content}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// DeletePost soft-deletes a post and removes its photo. A photo that
// cannot be removed is logged and does not block the deletion.
func (s *ForumService) DeletePost(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	post, err := s.findPost(ctx, id, false)
	if err != nil {
		return err
	}
	if err := actor.Authorize(post.UserID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Delete(&Post{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apps.ErrNotFound
	}

	if key, ok := PhotoKey(post.PhotoURL); ok {
		if err := s.store.Remove(ctx, storage.BucketPostPhotos, key); err != nil {
			slog.Warn("post photo not removed", "resource", storage.BucketPostPhotos, "action", "delete_post", "error", err)
		}
	}
	return nil
}

func (s *ForumService) DeleteComment(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	var comment Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apps.ErrNotFound
		}
		return err
	}
	if err := actor.Authorize(comment.UserID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Delete(&Comment{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apps.ErrNotFound
	}
	return nil
}

func (s *ForumService) findPost(ctx context.Context, id uuid.UUID, withAuthor bool) (*Post, error) {
	q := s.db.WithContext(ctx)
	if withAuthor {
		q = q.Scopes(identity.WithAuthor)
	}
	var post Post
	if err := q.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apps.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// PhotoKey is the object key of a post photo: the last two segments of
// its URL path.
func PhotoKey(photoURL string) (string, bool) {
	if photoURL == "" {
		return "", false
	}
	u, err := url.Parse(photoURL)
	if err != nil {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-1] == "" {
		return "", false
	}
	return strings.Join(parts[len(parts)-2:], "/"), true
}
