package service

import (
	"context"
	"testing"

	"townsquare/internal/models"
	"townsquare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// directoryRepoStub is a stub for repository.DirectoryRepository.
type directoryRepoStub struct {
	createFn     func(context.Context, *models.DirectoryListing) error
	getByIDFn    func(context.Context, uint) (*models.DirectoryListing, error)
	getBySlugFn  func(context.Context, string) (*models.DirectoryListing, error)
	updateFn     func(context.Context, *models.DirectoryListing) error
	deleteFn     func(context.Context, uint) error
	listFn       func(context.Context, repository.DirectoryFilter) ([]models.DirectoryListing, error)
	categoriesFn func(context.Context) ([]string, error)
}

func (s *directoryRepoStub) Create(ctx context.Context, l *models.DirectoryListing) error {
	return s.createFn(ctx, l)
}
func (s *directoryRepoStub) GetByID(ctx context.Context, id uint) (*models.DirectoryListing, error) {
	return s.getByIDFn(ctx, id)
}
func (s *directoryRepoStub) GetBySlug(ctx context.Context, slug string) (*models.DirectoryListing, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *directoryRepoStub) Update(ctx context.Context, l *models.DirectoryListing) error {
	return s.updateFn(ctx, l)
}
func (s *directoryRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *directoryRepoStub) List(ctx context.Context, f repository.DirectoryFilter) ([]models.DirectoryListing, error) {
	return s.listFn(ctx, f)
}
func (s *directoryRepoStub) Categories(ctx context.Context) ([]string, error) {
	return s.categoriesFn(ctx)
}

func noopDirectoryRepo() *directoryRepoStub {
	return &directoryRepoStub{
		createFn: func(_ context.Context, _ *models.DirectoryListing) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.DirectoryListing, error) {
			return &models.DirectoryListing{ID: id, UserID: 1, Slug: "test-listing", Approved: true}, nil
		},
		getBySlugFn: func(_ context.Context, slug string) (*models.DirectoryListing, error) {
			return &models.DirectoryListing{ID: 1, UserID: 1, Slug: slug, Approved: true}, nil
		},
		updateFn: func(_ context.Context, _ *models.DirectoryListing) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ repository.DirectoryFilter) ([]models.DirectoryListing, error) {
			return nil, nil
		},
		categoriesFn: func(_ context.Context) ([]string, error) { return nil, nil },
	}
}

func TestDirectoryService_CreateListing_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewDirectoryService(noopDirectoryRepo(), allExistsRegistry(), nil)

	t.Run("name required", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateListing(ctx, CreateListingInput{UserID: 1, Slug: "corner-bakery"})
		assertValidationError(t, err)
	})

	t.Run("bad slug", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateListing(ctx, CreateListingInput{UserID: 1, Name: "Bakery", Slug: "Corner Bakery!"})
		assertValidationError(t, err)
	})

	t.Run("reserved slug", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateListing(ctx, CreateListingInput{UserID: 1, Name: "Bakery", Slug: "admin"})
		assertValidationError(t, err)
	})

	t.Run("new listings await approval", func(t *testing.T) {
		t.Parallel()
		listing, err := svc.CreateListing(ctx, CreateListingInput{UserID: 1, Name: "Bakery", Slug: "corner-bakery"})
		require.NoError(t, err)
		assert.False(t, listing.Approved)
	})
}

func TestDirectoryService_GetListing_ApprovalVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopDirectoryRepo()
	repo.getBySlugFn = func(_ context.Context, slug string) (*models.DirectoryListing, error) {
		return &models.DirectoryListing{ID: 1, UserID: 10, Slug: slug, Approved: false}, nil
	}

	t.Run("stranger sees not found", func(t *testing.T) {
		t.Parallel()
		svc := NewDirectoryService(repo, allExistsRegistry(), nil)
		_, err := svc.GetListing(ctx, "hidden-shop", 2)
		assertNotFoundError(t, err)
	})

	t.Run("owner sees their unapproved listing", func(t *testing.T) {
		t.Parallel()
		svc := NewDirectoryService(repo, allExistsRegistry(), nil)
		listing, err := svc.GetListing(ctx, "hidden-shop", 10)
		require.NoError(t, err)
		assert.False(t, listing.Approved)
	})

	t.Run("admin sees it too", func(t *testing.T) {
		t.Parallel()
		isAdmin := func(_ context.Context, _ uint) (bool, error) { return true, nil }
		svc := NewDirectoryService(repo, allExistsRegistry(), isAdmin)
		_, err := svc.GetListing(ctx, "hidden-shop", 2)
		require.NoError(t, err)
	})
}

func TestDirectoryService_SetApproval(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("non-admin is forbidden", func(t *testing.T) {
		t.Parallel()
		svc := NewDirectoryService(noopDirectoryRepo(), allExistsRegistry(), nil)
		_, err := svc.SetApproval(ctx, 1, 1, true)
		assertForbiddenError(t, err)
	})

	t.Run("admin approves", func(t *testing.T) {
		t.Parallel()
		var saved *models.DirectoryListing
		repo := noopDirectoryRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.DirectoryListing, error) {
			return &models.DirectoryListing{ID: id, UserID: 10, Slug: "shop", Approved: false}, nil
		}
		repo.updateFn = func(_ context.Context, l *models.DirectoryListing) error {
			saved = l
			return nil
		}
		isAdmin := func(_ context.Context, _ uint) (bool, error) { return true, nil }
		svc := NewDirectoryService(repo, allExistsRegistry(), isAdmin)
		_, err := svc.SetApproval(ctx, 1, 1, true)
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.True(t, saved.Approved)
	})
}

func TestDirectoryService_DeleteListing_OwnershipGate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopDirectoryRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.DirectoryListing, error) {
		return &models.DirectoryListing{ID: id, UserID: 10, Slug: "shop"}, nil
	}

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()
		svc := NewDirectoryService(repo, allExistsRegistry(), nil)
		err := svc.DeleteListing(ctx, 2, 1)
		assertForbiddenError(t, err)
	})

	t.Run("owner may delete", func(t *testing.T) {
		t.Parallel()
		svc := NewDirectoryService(repo, allExistsRegistry(), nil)
		require.NoError(t, svc.DeleteListing(ctx, 10, 1))
	})
}
