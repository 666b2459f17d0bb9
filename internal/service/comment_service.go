package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	registry    repository.ContentRegistry
	isAdmin     AdminChecker
}

type CreateCommentInput struct {
	UserID      uint
	ContentType models.ContentType
	ContentID   uint
	ParentID    *uint
	Content     string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

type FlagCommentInput struct {
	UserID    uint
	CommentID uint
	Reason    string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	registry repository.ContentRegistry,
	isAdmin AdminChecker,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		registry:    registry,
		isAdmin:     isAdmin,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if !in.ContentType.Commentable() {
		return nil, models.NewValidationError("This content type does not accept comments")
	}

	exists, err := s.registry.Exists(ctx, in.ContentType, in.ContentID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", in.ContentID)
	}

	if in.ParentID != nil {
		if utf8.RuneCountInString(in.Content) > models.MaxReplyLen {
			return nil, models.NewValidationError(fmt.Sprintf("Reply too long (max %d characters)", models.MaxReplyLen))
		}
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, models.NewNotFoundError("Comment", *in.ParentID)
		}
		if parent.Status != models.CommentStatusActive {
			return nil, models.NewNotFoundError("Comment", *in.ParentID)
		}
		// One level of nesting only: replying to a reply is rejected.
		if parent.ParentID != nil {
			return nil, models.NewValidationError("Replies cannot be nested further")
		}
		if parent.ContentType != in.ContentType || parent.ContentID != in.ContentID {
			return nil, models.NewValidationError("Reply target does not belong to this content")
		}
	} else if utf8.RuneCountInString(in.Content) > models.MaxCommentLen {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", models.MaxCommentLen))
	}

	comment := &models.Comment{
		Content:     in.Content,
		UserID:      in.UserID,
		ContentType: in.ContentType,
		ContentID:   in.ContentID,
		ParentID:    in.ParentID,
		Status:      models.CommentStatusActive,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	middleware.CommentsCreated.WithLabelValues(string(in.ContentType)).Inc()

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	created.ResolveAuthor()
	return created, nil
}

func (s *CommentService) ListComments(ctx context.Context, contentType models.ContentType, contentID uint, page, perPage int) (*models.CommentPage, error) {
	if !contentType.Commentable() {
		return nil, models.NewValidationError("This content type does not accept comments")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	exists, err := s.registry.Exists(ctx, contentType, contentID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", contentID)
	}

	result, err := s.commentRepo.ListTopLevel(ctx, contentType, contentID, page, perPage)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, c := range result.Comments {
		c.ResolveAuthor()
	}
	return result, nil
}

func (s *CommentService) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	parent, err := s.commentRepo.GetByID(ctx, parentID)
	if err != nil {
		return nil, models.NewNotFoundError("Comment", parentID)
	}
	if parent.Status == models.CommentStatusDeleted {
		return nil, models.NewNotFoundError("Comment", parentID)
	}

	replies, err := s.commentRepo.ListReplies(ctx, parentID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, r := range replies {
		r.ResolveAuthor()
	}
	return replies, nil
}

// UpdateComment lets the author edit their own comment. Admins do not
// get edit rights; moderation hides or deletes instead.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, models.NewNotFoundError("Comment", in.CommentID)
	}
	if comment.Status != models.CommentStatusActive {
		return nil, models.NewNotFoundError("Comment", in.CommentID)
	}

	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	maxLen := models.MaxCommentLen
	if comment.ParentID != nil {
		maxLen = models.MaxReplyLen
	}
	if utf8.RuneCountInString(in.Content) > maxLen {
		return nil, models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxLen))
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	updated, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	updated.ResolveAuthor()
	return updated, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return models.NewNotFoundError("Comment", in.CommentID)
	}
	if comment.Status == models.CommentStatusDeleted {
		return models.NewNotFoundError("Comment", in.CommentID)
	}

	err = requireOwnerOrAdmin(ctx, comment.UserID, in.UserID, s.isAdmin,
		"You can only delete your own comments")
	if err != nil {
		return err
	}

	if err := s.commentRepo.SoftDelete(ctx, comment); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FlagComment records a moderation flag. Repeat flags from the same
// user are accepted and ignored.
func (s *CommentService) FlagComment(ctx context.Context, in FlagCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return models.NewNotFoundError("Comment", in.CommentID)
	}
	if comment.Status == models.CommentStatusDeleted {
		return models.NewNotFoundError("Comment", in.CommentID)
	}
	if len(in.Reason) > 500 {
		return models.NewValidationError("Reason too long (max 500 characters)")
	}

	_, err = s.commentRepo.Flag(ctx, &models.CommentFlag{
		CommentID: in.CommentID,
		UserID:    in.UserID,
		Reason:    in.Reason,
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListFlagged returns comments carrying at least one flag, admin only.
func (s *CommentService) ListFlagged(ctx context.Context, userID uint) ([]*models.Comment, error) {
	if err := requireAdmin(ctx, userID, s.isAdmin); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListFlagged(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, c := range comments {
		c.ResolveAuthor()
	}
	return comments, nil
}

// SetStatus is the admin moderation switch between active and hidden.
func (s *CommentService) SetStatus(ctx context.Context, userID, commentID uint, status models.CommentStatus) error {
	if err := requireAdmin(ctx, userID, s.isAdmin); err != nil {
		return err
	}
	if status != models.CommentStatusActive && status != models.CommentStatusHidden {
		return models.NewValidationError("Status must be active or hidden")
	}

	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return models.NewNotFoundError("Comment", commentID)
	}
	if err := s.commentRepo.SetStatus(ctx, commentID, status); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
