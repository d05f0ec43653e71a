package services

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryService stores trip photos on Cloudinary and hands back the
// URL that goes into an entry's photo_links.
type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryService(cloudName, apiKey, apiSecret, folder string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld, folder: folder}, nil
}

// UploadPhoto uploads an image under a random public id and returns its HTTPS URL.
func (s *CloudinaryService) UploadPhoto(ctx context.Context, photo io.Reader) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, photo, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     uuid.NewString(),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}
