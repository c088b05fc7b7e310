package models

// Photo records a profile photo stored in S3. The bytes themselves never
// pass through this service; clients upload and download through presigned
// URLs.
type Photo struct {
	PhotoID     string `dynamodbav:"photoId" json:"photoId"`
	UID         string `dynamodbav:"uid" json:"uid"`
	S3Key       string `dynamodbav:"s3Key" json:"-"`
	ContentType string `dynamodbav:"contentType" json:"contentType"`
	CreatedAt   int64  `dynamodbav:"createdAt" json:"createdAt"`
}

const (
	MinPhotosPerUser = 3
	MaxPhotosPerUser = 10
)

// PhotosTable is the DynamoDB table name for photos, keyed by `photoId`.
// `PhotoOwnerIndex` is a GSI on `uid`.
const PhotosTable = "Photos"

// PhotoOwnerIndex is the GSI used to list a user's photos.
const PhotoOwnerIndex = "PhotoOwnerIndex"
