package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"math"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"townsquare/internal/config"
	"townsquare/internal/models"
	"townsquare/internal/repository"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageUploadDir       = "/tmp/townsquare/uploads/images"
	DefaultImageMaxUploadSizeMB = 10
	MasterMaxSize               = 2048
	JPEGQuality                 = 82
	WebPQuality                 = 70
)

var sizeLadder = []int{256, 640, 1080, 2048}

var allowedRatios = []struct {
	name  string
	ratio float64
}{
	{name: "landscape", ratio: 1.91},
	{name: "square", ratio: 1.0},
	{name: "portrait", ratio: 0.8},
}

type UploadImageInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// ImageService normalizes uploads into a hash-addressed master plus a
// ladder of resized jpeg/webp variants.
type ImageService struct {
	repo               repository.ImageRepository
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewImageService(repo repository.ImageRepository, cfg *config.Config) *ImageService {
	uploadDir := DefaultImageUploadDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.ImageUploadDir != "" {
			uploadDir = cfg.ImageUploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageService{
		repo:               repo,
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*models.Image, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return nil, models.NewValidationError("Unsupported image format")
	}

	b := decoded.Bounds()
	cropMode, cropX, cropY, cropW, cropH := selectCropMode(b.Dx(), b.Dy())
	cropped := cropToRect(decoded, cropX, cropY, cropW, cropH)
	master := resizeToFit(cropped, MasterMaxSize, MasterMaxSize)

	encodedMaster, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	hash := buildImageHash(in.UserID, encodedMaster)

	// Same bytes from the same user resolve to the existing record.
	if existing, getErr := s.repo.GetByHash(ctx, hash); getErr == nil {
		return existing, nil
	}

	masterRel := filepath.ToSlash(filepath.Join(hash, "master.jpg"))
	if err := writeBytesToFile(filepath.Join(s.uploadDir, masterRel), encodedMaster); err != nil {
		return nil, models.NewInternalError(err)
	}

	masterBounds := master.Bounds()
	record := &models.Image{
		Hash:     hash,
		UserID:   in.UserID,
		Width:    masterBounds.Dx(),
		Height:   masterBounds.Dy(),
		CropMode: cropMode,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	if err := s.generateVariants(ctx, record, master); err != nil {
		return nil, err
	}
	return s.repo.GetByHash(ctx, hash)
}

func (s *ImageService) generateVariants(ctx context.Context, img *models.Image, master image.Image) error {
	b := master.Bounds()
	for _, size := range sizeLadder {
		if b.Dx() < size && b.Dy() < size {
			continue
		}
		resized := resizeToFit(master, size, size)

		webpBytes, err := encodeWebP(resized, WebPQuality)
		if err != nil {
			return models.NewInternalError(err)
		}
		webpRel := filepath.ToSlash(filepath.Join(img.Hash, fmt.Sprintf("%d.webp", size)))
		if err := writeBytesToFile(filepath.Join(s.uploadDir, webpRel), webpBytes); err != nil {
			return models.NewInternalError(err)
		}
		if err := s.repo.AddVariant(ctx, &models.ImageVariant{
			ImageID: img.ID,
			SizePx:  size,
			Format:  "webp",
			Path:    webpRel,
		}); err != nil {
			return err
		}

		jpgBytes, err := encodeJPEG(resized, JPEGQuality)
		if err != nil {
			return models.NewInternalError(err)
		}
		jpgRel := filepath.ToSlash(filepath.Join(img.Hash, fmt.Sprintf("%d.jpg", size)))
		if err := writeBytesToFile(filepath.Join(s.uploadDir, jpgRel), jpgBytes); err != nil {
			return models.NewInternalError(err)
		}
		if err := s.repo.AddVariant(ctx, &models.ImageVariant{
			ImageID: img.ID,
			SizePx:  size,
			Format:  "jpg",
			Path:    jpgRel,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ImageService) GetByHash(ctx context.Context, hash string) (*models.Image, error) {
	if !isValidImageHash(hash) {
		return nil, models.NewValidationError("Invalid image hash")
	}
	return s.repo.GetByHash(ctx, hash)
}

// ResolveForServing maps a hash and optional variant file name to a
// path on disk.
func (s *ImageService) ResolveForServing(ctx context.Context, hash, file string) (string, error) {
	if !isValidImageHash(hash) {
		return "", models.NewValidationError("Invalid image hash")
	}
	img, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		return "", err
	}

	if file == "" || file == "master.jpg" {
		fullPath := filepath.Join(s.uploadDir, img.Hash, "master.jpg")
		if _, err := os.Stat(fullPath); err != nil {
			return "", models.NewNotFoundError("Image", hash)
		}
		return fullPath, nil
	}

	for _, v := range img.Variants {
		if filepath.Base(v.Path) == file {
			fullPath := filepath.Join(s.uploadDir, v.Path)
			if _, err := os.Stat(fullPath); err != nil {
				return "", models.NewNotFoundError("Image", hash)
			}
			return fullPath, nil
		}
	}
	return "", models.NewNotFoundError("Image", hash)
}

func (s *ImageService) BuildMasterURL(hash string) string {
	return fmt.Sprintf("/media/i/%s/master.jpg", hash)
}

func (s *ImageService) BuildVariantsMap(hash string, variants []models.ImageVariant) map[string]string {
	m := make(map[string]string, len(variants))
	for _, v := range variants {
		key := fmt.Sprintf("%d_%s", v.SizePx, v.Format)
		m[key] = fmt.Sprintf("/media/i/%s/%d.%s", hash, v.SizePx, v.Format)
	}
	return m
}

// isValidImageHash checks that the hash is strictly lowercase hex.
// This prevents path traversal via crafted hash parameters.
func isValidImageHash(hash string) bool {
	if len(hash) == 0 || len(hash) > 128 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func selectCropMode(w, h int) (mode string, cropX, cropY, cropW, cropH int) {
	if w <= 0 || h <= 0 {
		return "free", 0, 0, w, h
	}
	ratio := float64(w) / float64(h)
	best := allowedRatios[0]
	for _, r := range allowedRatios[1:] {
		if math.Abs(ratio-r.ratio) < math.Abs(ratio-best.ratio) {
			best = r
		}
	}
	bestMode, bestRatio := best.name, best.ratio

	if ratio > bestRatio {
		cropH = h
		cropW = int(float64(h) * bestRatio)
		cropX = (w - cropW) / 2
		cropY = 0
	} else {
		cropW = w
		cropH = int(float64(w) / bestRatio)
		cropX = 0
		cropY = (h - cropH) / 2
	}
	return bestMode, cropX, cropY, max(cropW, 1), max(cropH, 1)
}

func cropToRect(src image.Image, x, y, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, image.Point{X: x, Y: y}, draw.Src)
	return dst
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := math.Min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func buildImageHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
