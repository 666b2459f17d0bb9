package service

import (
	"context"
	"testing"
	"time"

	"townsquare/internal/models"
	"townsquare/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T", err)
	require.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func assertConflictError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeConflict)
}

// registryStub is a stub for repository.ContentRegistry.
type registryStub struct {
	existsFn func(context.Context, models.ContentType, uint) (bool, error)
}

func (s *registryStub) Exists(ctx context.Context, ct models.ContentType, id uint) (bool, error) {
	return s.existsFn(ctx, ct, id)
}
func (s *registryStub) AdjustCommentCount(_ *gorm.DB, _ models.ContentType, _ uint, _ int) error {
	return nil
}
func (s *registryStub) IncrementViews(_ context.Context, _ models.ContentType, _ uint) error {
	return nil
}

func allExistsRegistry() *registryStub {
	return &registryStub{
		existsFn: func(_ context.Context, _ models.ContentType, _ uint) (bool, error) { return true, nil },
	}
}

// reactionRepoStub is a stub for repository.ReactionRepository.
type reactionRepoStub struct {
	toggleFn  func(context.Context, uint, models.ContentType, uint, models.ReactionKind) (*models.ReactionSummary, error)
	summaryFn func(context.Context, models.ContentType, uint, uint) (*models.ReactionSummary, error)
}

func (s *reactionRepoStub) Toggle(ctx context.Context, userID uint, ct models.ContentType, id uint, kind models.ReactionKind) (*models.ReactionSummary, error) {
	return s.toggleFn(ctx, userID, ct, id, kind)
}
func (s *reactionRepoStub) Summary(ctx context.Context, ct models.ContentType, id uint, userID uint) (*models.ReactionSummary, error) {
	return s.summaryFn(ctx, ct, id, userID)
}
func (s *reactionRepoStub) DeleteForTarget(_ *gorm.DB, _ models.ContentType, _ uint) error {
	return nil
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		toggleFn: func(_ context.Context, _ uint, _ models.ContentType, _ uint, _ models.ReactionKind) (*models.ReactionSummary, error) {
			return &models.ReactionSummary{}, nil
		},
		summaryFn: func(_ context.Context, _ models.ContentType, _ uint, _ uint) (*models.ReactionSummary, error) {
			return &models.ReactionSummary{}, nil
		},
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	listTopLevelFn func(context.Context, models.ContentType, uint, int, int) (*models.CommentPage, error)
	listRepliesFn  func(context.Context, uint) ([]*models.Comment, error)
	updateFn       func(context.Context, *models.Comment) error
	softDeleteFn   func(context.Context, *models.Comment) error
	flagFn         func(context.Context, *models.CommentFlag) (bool, error)
	listFlaggedFn  func(context.Context) ([]*models.Comment, error)
	setStatusFn    func(context.Context, uint, models.CommentStatus) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListTopLevel(ctx context.Context, ct models.ContentType, id uint, page, perPage int) (*models.CommentPage, error) {
	return s.listTopLevelFn(ctx, ct, id, page, perPage)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentID)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) SoftDelete(ctx context.Context, c *models.Comment) error {
	return s.softDeleteFn(ctx, c)
}
func (s *commentRepoStub) Flag(ctx context.Context, f *models.CommentFlag) (bool, error) {
	return s.flagFn(ctx, f)
}
func (s *commentRepoStub) ListFlagged(ctx context.Context) ([]*models.Comment, error) {
	return s.listFlaggedFn(ctx)
}
func (s *commentRepoStub) SetStatus(ctx context.Context, id uint, status models.CommentStatus) error {
	return s.setStatusFn(ctx, id, status)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, Status: models.CommentStatusActive}, nil
		},
		listTopLevelFn: func(_ context.Context, _ models.ContentType, _ uint, page, _ int) (*models.CommentPage, error) {
			return &models.CommentPage{Page: page}, nil
		},
		listRepliesFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		softDeleteFn:  func(_ context.Context, _ *models.Comment) error { return nil },
		flagFn:        func(_ context.Context, _ *models.CommentFlag) (bool, error) { return true, nil },
		listFlaggedFn: func(_ context.Context) ([]*models.Comment, error) { return nil, nil },
		setStatusFn:   func(_ context.Context, _ uint, _ models.CommentStatus) error { return nil },
	}
}

// eventRepoStub is a stub for repository.EventRepository.
type eventRepoStub struct {
	createFn        func(context.Context, *models.Event) error
	getByIDFn       func(context.Context, uint) (*models.Event, error)
	updateFn        func(context.Context, *models.Event) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, repository.EventFilter) ([]models.Event, error)
	upsertRSVPFn    func(context.Context, *models.EventAttendee) error
	getRSVPFn       func(context.Context, uint, uint) (*models.EventAttendee, error)
	listAttendeesFn func(context.Context, uint) ([]models.EventAttendee, error)
	updateRSVPFn    func(context.Context, *models.EventAttendee) error
	sweepFn         func(context.Context, time.Time) (*repository.SweepResult, error)
}

func (s *eventRepoStub) Create(ctx context.Context, e *models.Event) error { return s.createFn(ctx, e) }
func (s *eventRepoStub) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	return s.getByIDFn(ctx, id)
}
func (s *eventRepoStub) Update(ctx context.Context, e *models.Event) error { return s.updateFn(ctx, e) }
func (s *eventRepoStub) Delete(ctx context.Context, id uint) error         { return s.deleteFn(ctx, id) }
func (s *eventRepoStub) List(ctx context.Context, f repository.EventFilter) ([]models.Event, error) {
	return s.listFn(ctx, f)
}
func (s *eventRepoStub) UpsertRSVP(ctx context.Context, a *models.EventAttendee) error {
	return s.upsertRSVPFn(ctx, a)
}
func (s *eventRepoStub) GetRSVP(ctx context.Context, eventID, userID uint) (*models.EventAttendee, error) {
	return s.getRSVPFn(ctx, eventID, userID)
}
func (s *eventRepoStub) ListAttendees(ctx context.Context, eventID uint) ([]models.EventAttendee, error) {
	return s.listAttendeesFn(ctx, eventID)
}
func (s *eventRepoStub) UpdateRSVP(ctx context.Context, a *models.EventAttendee) error {
	return s.updateRSVPFn(ctx, a)
}
func (s *eventRepoStub) SweepStatuses(ctx context.Context, cutoff time.Time) (*repository.SweepResult, error) {
	return s.sweepFn(ctx, cutoff)
}

func noopEventRepo() *eventRepoStub {
	return &eventRepoStub{
		createFn: func(_ context.Context, _ *models.Event) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, IsActive: true, Date: time.Now().AddDate(0, 0, 7)}, nil
		},
		updateFn: func(_ context.Context, _ *models.Event) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ repository.EventFilter) ([]models.Event, error) {
			return nil, nil
		},
		upsertRSVPFn: func(_ context.Context, _ *models.EventAttendee) error { return nil },
		getRSVPFn: func(_ context.Context, eventID, userID uint) (*models.EventAttendee, error) {
			return &models.EventAttendee{EventID: eventID, UserID: userID}, nil
		},
		listAttendeesFn: func(_ context.Context, _ uint) ([]models.EventAttendee, error) { return nil, nil },
		updateRSVPFn:    func(_ context.Context, _ *models.EventAttendee) error { return nil },
		sweepFn: func(_ context.Context, _ time.Time) (*repository.SweepResult, error) {
			return &repository.SweepResult{}, nil
		},
	}
}
