package model

import "errors"

const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	AvatarCacheControl = "public, max-age=31536000" // 1 year

	DraftMediaFolder   = "drafts"
	MaxDraftMediaBytes = 50 * 1024 * 1024 // videos included
)

// Supported content types for direct uploads.
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
	ContentTypeMP4  = "video/mp4"
	ContentTypeMOV  = "video/quicktime"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

var allowedDraftMediaTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
	ContentTypeMP4:  {},
	ContentTypeMOV:  {},
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidMediaKind = "INVALID_MEDIA_TYPE"
)

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrInvalidMediaKind = errors.New("unsupported media content type")
)

// UploadResult is the uploaded object location: the public URL and the
// bucket key (kept for later deletes).
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignUploadRequest asks for a presigned URL for one direct-to-R2 upload.
type PresignUploadRequest struct {
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
}

// PresignUploadResponse returns the upload target. The client PUTs bytes to
// UploadURL, then references PublicURL in the draft's media list.
type PresignUploadResponse struct {
	UploadURL  string `json:"upload_url"`
	PublicURL  string `json:"public_url"`
	Key        string `json:"key"`
	ExpiresInS int    `json:"expires_in"`
}

// PresignUploadBatchRequest asks for several presigned URLs at once.
type PresignUploadBatchRequest struct {
	Items []PresignUploadRequest `json:"items"`
}

// PresignUploadBatchResponse returns one entry per requested item.
type PresignUploadBatchResponse struct {
	Items []PresignUploadResponse `json:"items"`
}

// IsAllowedImageType reports if the content type is an accepted image.
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// IsAllowedDraftMediaType reports if the content type may be attached to a
// draft (images and video).
func IsAllowedDraftMediaType(contentType string) bool {
	_, ok := allowedDraftMediaTypes[contentType]
	return ok
}
