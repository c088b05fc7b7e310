package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"datee_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignExpiry = 5 * time.Minute

var (
	ErrTooManyPhotos = errors.New("user has too many photos")
	ErrPhotoNotFound = errors.New("photo not found")
	ErrNotAnImage    = errors.New("content type must be an image")
)

// PhotoUpload is the response to an upload request: where to PUT the bytes
// and the photo record that will represent them.
type PhotoUpload struct {
	UploadURL string       `json:"uploadUrl"`
	Photo     models.Photo `json:"photo"`
}

// PhotoService records profile photos in DynamoDB and hands out presigned
// S3 URLs; the bytes never pass through this service. Uploading the minimum
// number of photos advances a Registered user to PhotoUploaded.
type PhotoService struct {
	Dynamo *DynamoService
	Users  *UserService
	S3     *s3.Client
	Bucket string
}

// BeginUpload validates the request, records the photo and returns a
// presigned PUT URL valid for five minutes.
func (ps *PhotoService) BeginUpload(ctx context.Context, uid, contentType string) (*PhotoUpload, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}
	existing, err := ps.ListPhotos(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(existing) >= models.MaxPhotosPerUser {
		return nil, ErrTooManyPhotos
	}

	photo := models.Photo{
		PhotoID:     uuid.NewString(),
		UID:         uid,
		ContentType: contentType,
		CreatedAt:   time.Now().Unix(),
	}
	photo.S3Key = "profile-pics/" + photo.PhotoID

	presigner := s3.NewPresignClient(ps.S3)
	presigned, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(ps.Bucket),
		Key:         aws.String(photo.S3Key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	if err := ps.Dynamo.PutItem(ctx, models.PhotosTable, photo); err != nil {
		return nil, err
	}

	// Reaching the minimum photo count moves a fresh registration forward.
	user, err := ps.Users.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user.State == models.StateRegistered && len(existing)+1 >= models.MinPhotosPerUser {
		if err := ps.Users.SetUserState(ctx, uid, models.StatePhotoUploaded); err != nil {
			return nil, err
		}
	}

	return &PhotoUpload{UploadURL: presigned.URL, Photo: photo}, nil
}

// ListPhotos returns the photo records belonging to a user.
func (ps *PhotoService) ListPhotos(ctx context.Context, uid string) ([]models.Photo, error) {
	var photos []models.Photo
	err := ps.Dynamo.QueryItemsWithIndex(ctx, models.PhotosTable, models.PhotoOwnerIndex,
		"uid = :uid",
		map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: uid},
		}, nil, &photos)
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// ReadURL returns a presigned GET URL for a photo. Any authenticated user
// may read any photo whose id they know.
func (ps *PhotoService) ReadURL(ctx context.Context, photoID string) (string, error) {
	key := map[string]types.AttributeValue{
		"photoId": &types.AttributeValueMemberS{Value: photoID},
	}
	var photo models.Photo
	err := ps.Dynamo.GetItem(ctx, models.PhotosTable, key, &photo)
	if errors.Is(err, ErrItemNotFound) {
		return "", ErrPhotoNotFound
	}
	if err != nil {
		return "", err
	}

	presigner := s3.NewPresignClient(ps.S3)
	presigned, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ps.Bucket),
		Key:    aws.String(photo.S3Key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign read: %w", err)
	}
	return presigned.URL, nil
}

