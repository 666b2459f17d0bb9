package service

import (
	"context"

	"townsquare/internal/models"
	"townsquare/internal/repository"
	"townsquare/internal/validation"
)

// DirectoryService implements the business directory: owners submit
// listings, admins approve them, the public sees approved ones.
type DirectoryService struct {
	directoryRepo repository.DirectoryRepository
	registry      repository.ContentRegistry
	isAdmin       AdminChecker
}

type CreateListingInput struct {
	UserID      uint
	Name        string
	Slug        string
	Description string
	Category    string
	Website     string
	Phone       string
	Address     string
	ImageHash   string
}

type UpdateListingInput struct {
	UserID      uint
	ListingID   uint
	Name        *string
	Description *string
	Category    *string
	Website     *string
	Phone       *string
	Address     *string
	ImageHash   *string
}

func NewDirectoryService(
	directoryRepo repository.DirectoryRepository,
	registry repository.ContentRegistry,
	isAdmin AdminChecker,
) *DirectoryService {
	return &DirectoryService{
		directoryRepo: directoryRepo,
		registry:      registry,
		isAdmin:       isAdmin,
	}
}

func (s *DirectoryService) CreateListing(ctx context.Context, in CreateListingInput) (*models.DirectoryListing, error) {
	if in.Name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if err := validation.ValidateListingSlug(in.Slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	listing := &models.DirectoryListing{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Category:    in.Category,
		Website:     in.Website,
		Phone:       in.Phone,
		Address:     in.Address,
		ImageHash:   in.ImageHash,
		UserID:      in.UserID,
		// New listings wait for admin approval.
		Approved: false,
	}
	if err := s.directoryRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// GetListing returns one listing by slug. Unapproved listings are only
// visible to their owner and admins.
func (s *DirectoryService) GetListing(ctx context.Context, slug string, userID uint) (*models.DirectoryListing, error) {
	listing, err := s.directoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !listing.Approved {
		err := requireOwnerOrAdmin(ctx, listing.UserID, userID, s.isAdmin, "")
		if err != nil {
			return nil, models.NewNotFoundError("Listing", slug)
		}
		return listing, nil
	}

	_ = s.registry.IncrementViews(ctx, models.ContentTypeDirectory, listing.ID)
	return listing, nil
}

func (s *DirectoryService) ListListings(ctx context.Context, filter repository.DirectoryFilter, userID uint) ([]models.DirectoryListing, error) {
	if !filter.ApprovedOnly {
		// Seeing unapproved listings is limited to admins, except when
		// the caller is browsing their own.
		if filter.OwnerID == 0 || filter.OwnerID != userID {
			if err := requireAdmin(ctx, userID, s.isAdmin); err != nil {
				return nil, err
			}
		}
	}
	return s.directoryRepo.List(ctx, filter)
}

func (s *DirectoryService) Categories(ctx context.Context) ([]string, error) {
	return s.directoryRepo.Categories(ctx)
}

func (s *DirectoryService) UpdateListing(ctx context.Context, in UpdateListingInput) (*models.DirectoryListing, error) {
	listing, err := s.directoryRepo.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}

	err = requireOwnerOrAdmin(ctx, listing.UserID, in.UserID, s.isAdmin,
		"You can only edit your own listings")
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, models.NewValidationError("Name cannot be empty")
		}
		listing.Name = *in.Name
	}
	if in.Description != nil {
		listing.Description = *in.Description
	}
	if in.Category != nil {
		listing.Category = *in.Category
	}
	if in.Website != nil {
		listing.Website = *in.Website
	}
	if in.Phone != nil {
		listing.Phone = *in.Phone
	}
	if in.Address != nil {
		listing.Address = *in.Address
	}
	if in.ImageHash != nil {
		listing.ImageHash = *in.ImageHash
	}

	if err := s.directoryRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *DirectoryService) DeleteListing(ctx context.Context, userID, listingID uint) error {
	listing, err := s.directoryRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}

	err = requireOwnerOrAdmin(ctx, listing.UserID, userID, s.isAdmin,
		"You can only delete your own listings")
	if err != nil {
		return err
	}
	return s.directoryRepo.Delete(ctx, listingID)
}

// SetApproval is the admin switch for listing visibility.
func (s *DirectoryService) SetApproval(ctx context.Context, userID, listingID uint, approved bool) (*models.DirectoryListing, error) {
	if err := requireAdmin(ctx, userID, s.isAdmin); err != nil {
		return nil, err
	}

	listing, err := s.directoryRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	listing.Approved = approved
	if err := s.directoryRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}
