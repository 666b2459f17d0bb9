package service

import (
	"context"

	"townsquare/internal/models"
	"townsquare/internal/repository"
)

// NewsService implements article publishing. Writing is admin-only;
// readers only ever see the rendered, sanitized HTML.
type NewsService struct {
	newsRepo repository.NewsRepository
	registry repository.ContentRegistry
	isAdmin  AdminChecker
}

type CreateNewsInput struct {
	UserID    uint
	Title     string
	Body      string
	ImageHash string
	Published bool
}

type UpdateNewsInput struct {
	UserID    uint
	ArticleID uint
	Title     *string
	Body      *string
	ImageHash *string
	Published *bool
}

func NewNewsService(
	newsRepo repository.NewsRepository,
	registry repository.ContentRegistry,
	isAdmin AdminChecker,
) *NewsService {
	return &NewsService{
		newsRepo: newsRepo,
		registry: registry,
		isAdmin:  isAdmin,
	}
}

func (s *NewsService) CreateArticle(ctx context.Context, in CreateNewsInput) (*models.NewsArticle, error) {
	if err := requireAdmin(ctx, in.UserID, s.isAdmin); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Body == "" {
		return nil, models.NewValidationError("Body is required")
	}

	bodyHTML, err := renderMarkdown(in.Body)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	article := &models.NewsArticle{
		Title:     in.Title,
		Body:      in.Body,
		BodyHTML:  bodyHTML,
		ImageHash: in.ImageHash,
		UserID:    in.UserID,
		Published: in.Published,
	}
	if err := s.newsRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// GetArticle returns one article. Drafts are only visible to admins.
func (s *NewsService) GetArticle(ctx context.Context, id uint, userID uint) (*models.NewsArticle, error) {
	article, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !article.Published {
		if userID == 0 {
			return nil, models.NewNotFoundError("News article", id)
		}
		if err := requireAdmin(ctx, userID, s.isAdmin); err != nil {
			return nil, models.NewNotFoundError("News article", id)
		}
		return article, nil
	}

	_ = s.registry.IncrementViews(ctx, models.ContentTypeNews, id)
	return article, nil
}

func (s *NewsService) ListArticles(ctx context.Context, userID uint, includeDrafts bool, limit, offset int) ([]models.NewsArticle, error) {
	publishedOnly := true
	if includeDrafts {
		if err := requireAdmin(ctx, userID, s.isAdmin); err != nil {
			return nil, err
		}
		publishedOnly = false
	}
	return s.newsRepo.List(ctx, publishedOnly, limit, offset)
}

func (s *NewsService) UpdateArticle(ctx context.Context, in UpdateNewsInput) (*models.NewsArticle, error) {
	if err := requireAdmin(ctx, in.UserID, s.isAdmin); err != nil {
		return nil, err
	}

	article, err := s.newsRepo.GetByID(ctx, in.ArticleID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		article.Title = *in.Title
	}
	if in.Body != nil {
		if *in.Body == "" {
			return nil, models.NewValidationError("Body cannot be empty")
		}
		article.Body = *in.Body
		html, err := renderMarkdown(*in.Body)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		article.BodyHTML = html
	}
	if in.ImageHash != nil {
		article.ImageHash = *in.ImageHash
	}
	if in.Published != nil {
		article.Published = *in.Published
	}

	if err := s.newsRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *NewsService) DeleteArticle(ctx context.Context, userID, articleID uint) error {
	if err := requireAdmin(ctx, userID, s.isAdmin); err != nil {
		return err
	}
	if _, err := s.newsRepo.GetByID(ctx, articleID); err != nil {
		return err
	}
	return s.newsRepo.Delete(ctx, articleID)
}
