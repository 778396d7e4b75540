package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"

	"postdeck/internal/model"
)

// newTestMediaService points the S3 client at a local server standing in
// for R2.
func newTestMediaService(t *testing.T, handler http.HandlerFunc) *MediaService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
		o.UsePathStyle = true
	})

	return &MediaService{
		s3Client:  client,
		presigner: s3.NewPresignClient(client),
		bucket:    "postdeck-media",
		publicURL: "https://cdn.example.com",
	}
}

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

func testAvatarUpload(t *testing.T) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	header := &multipart.FileHeader{
		Filename: "avatar.png",
		Size:     int64(buf.Len()),
		Header:   textproto.MIMEHeader{"Content-Type": []string{model.ContentTypePNG}},
	}
	return memFile{bytes.NewReader(buf.Bytes())}, header
}

func TestMediaService_UploadAvatar(t *testing.T) {
	var gotMethod, gotPath, gotContentType, gotCacheControl string
	svc := newTestMediaService(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotCacheControl = r.Header.Get("Cache-Control")
		w.WriteHeader(http.StatusOK)
	})

	file, header := testAvatarUpload(t)
	result, err := svc.UploadAvatar(context.Background(), file, header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if !strings.HasPrefix(gotPath, "/postdeck-media/"+model.AvatarFolder+"/") {
		t.Errorf("path = %s, want bucket + avatar folder prefix", gotPath)
	}
	if gotContentType != model.ContentTypeJPEG {
		t.Errorf("content type = %q, want %q", gotContentType, model.ContentTypeJPEG)
	}
	if gotCacheControl != model.AvatarCacheControl {
		t.Errorf("cache control = %q, want %q", gotCacheControl, model.AvatarCacheControl)
	}
	if !strings.HasPrefix(result.URL, "https://cdn.example.com/"+model.AvatarFolder+"/") {
		t.Errorf("url = %s, want public avatar URL", result.URL)
	}
	if !strings.HasSuffix(result.Key, model.AvatarExt) {
		t.Errorf("key = %s, want %s suffix", result.Key, model.AvatarExt)
	}
}

func TestMediaService_UploadAvatar_Validation(t *testing.T) {
	svc := newTestMediaService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("rejected upload should not reach the bucket")
	})

	t.Run("oversize", func(t *testing.T) {
		file, header := testAvatarUpload(t)
		header.Size = model.MaxAvatarSizeBytes + 1
		if _, err := svc.UploadAvatar(context.Background(), file, header); !errors.Is(err, model.ErrFileTooLarge) {
			t.Errorf("error = %v, want %v", err, model.ErrFileTooLarge)
		}
	})

	t.Run("non-image content type", func(t *testing.T) {
		file, header := testAvatarUpload(t)
		header.Header.Set("Content-Type", "text/plain")
		if _, err := svc.UploadAvatar(context.Background(), file, header); !errors.Is(err, model.ErrInvalidImageType) {
			t.Errorf("error = %v, want %v", err, model.ErrInvalidImageType)
		}
	})
}

func TestMediaService_PresignDraftUpload(t *testing.T) {
	svc := newTestMediaService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("presigning must not contact the bucket")
	})

	resp, err := svc.PresignDraftUpload(context.Background(), &model.PresignUploadRequest{
		ContentType: model.ContentTypeJPEG,
		FileSize:    1 << 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.UploadURL, "/postdeck-media/"+model.DraftMediaFolder+"/") {
		t.Errorf("upload url = %s, want bucket + draft folder", resp.UploadURL)
	}
	if resp.ExpiresInS != int(presignExpiry.Seconds()) {
		t.Errorf("expires = %d, want %d", resp.ExpiresInS, int(presignExpiry.Seconds()))
	}

	if _, err := svc.PresignDraftUpload(context.Background(), &model.PresignUploadRequest{
		ContentType: "application/pdf", FileSize: 100,
	}); !errors.Is(err, model.ErrInvalidMediaKind) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidMediaKind)
	}

	if _, err := svc.PresignDraftUpload(context.Background(), &model.PresignUploadRequest{
		ContentType: model.ContentTypeMP4, FileSize: model.MaxDraftMediaBytes + 1,
	}); !errors.Is(err, model.ErrFileTooLarge) {
		t.Errorf("error = %v, want %v", err, model.ErrFileTooLarge)
	}
}
