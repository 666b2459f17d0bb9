package server

import (
	"io"
	"strings"

	"townsquare/internal/models"
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ImageUploadResponse is the API response after uploading an image.
type ImageUploadResponse struct {
	ID       uint              `json:"id"`
	Hash     string            `json:"hash"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	CropMode string            `json:"crop_mode"`
	URL      string            `json:"url"`
	Variants map[string]string `json:"variants"`
}

// UploadImage handles POST /api/images
// @Summary Upload image
// @Tags images
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 200 {object} server.ImageUploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /images [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}

	uploaded, err := s.imageService.Upload(c.UserContext(), service.UploadImageInput{
		UserID:      userID,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(ImageUploadResponse{
		ID:       uploaded.ID,
		Hash:     uploaded.Hash,
		Width:    uploaded.Width,
		Height:   uploaded.Height,
		CropMode: uploaded.CropMode,
		URL:      s.imageService.BuildMasterURL(uploaded.Hash),
		Variants: s.imageService.BuildVariantsMap(uploaded.Hash, uploaded.Variants),
	})
}

// ServeImage handles GET /api/media/i/:hash/:file, sending the master
// or a variant from disk. Hash-addressed content never changes, so
// clients may cache it forever.
// @Summary Serve image
// @Tags images
// @Produce png
// @Param hash path string true "Image hash"
// @Param file path string true "File name, e.g. master.jpg or 640.webp"
// @Success 200
// @Failure 404 {object} models.ErrorResponse
// @Router /media/i/{hash}/{file} [get]
func (s *Server) ServeImage(c *fiber.Ctx) error {
	hash := strings.TrimSpace(c.Params("hash"))
	file := strings.TrimSpace(c.Params("file"))

	path, err := s.imageService.ResolveForServing(c.UserContext(), hash, file)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.SendFile(path)
}
