package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	MaxLogoSize = 2 * 1024 * 1024 // 2MB
	BucketName  = "billdesk-assets"
	Region      = "ap-south-1"
)

var (
	s3Client     *s3.Client
	allowedTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
	}
)

func InitStorage() error {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(Region),
	)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %v", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	return nil
}

// UploadLogo validates, re-encodes and stores a business logo used for
// invoice branding. Logos stay png/jpeg so the document renderer can
// embed them directly.
func UploadLogo(file *multipart.FileHeader, userID uint) (string, error) {
	if file.Size > MaxLogoSize {
		return "", fmt.Errorf("file size too large. Maximum size is %d bytes", MaxLogoSize)
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedTypes[contentType] {
		return "", fmt.Errorf("invalid file type. Allowed types are: jpeg, png")
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return "", fmt.Errorf("could not decode image: %v", err)
	}

	buf := new(bytes.Buffer)

	switch format {
	case "jpeg":
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: 85})
	case "png":
		err = png.Encode(buf, img)
	default:
		return "", fmt.Errorf("unsupported image format: %s", format)
	}

	if err != nil {
		return "", fmt.Errorf("could not encode image: %v", err)
	}

	fileName := fmt.Sprintf("logos/%d/%d_%s",
		userID,
		time.Now().Unix(),
		filepath.Base(file.Filename),
	)

	_, err = s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})

	if err != nil {
		return "", fmt.Errorf("could not upload to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", BucketName, Region, fileName), nil
}

// DeleteLogo removes a previously uploaded logo.
func DeleteLogo(logoURL string) error {
	parts := strings.Split(logoURL, "/")
	key := strings.Join(parts[3:], "/")

	_, err := s3Client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(BucketName),
		Key:    aws.String(key),
	})

	return err
}
