package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of *s3.Client used by S3Input.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Object identifies an object in a bucket.
type S3Object struct {
	Bucket string
	Key    string
}

// String returns the object as an s3:// URL.
func (o S3Object) String() string {
	return "s3://" + o.Bucket + "/" + o.Key
}

// ParseS3URL parses "s3://bucket/key".
func ParseS3URL(raw string) (S3Object, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return S3Object{}, fmt.Errorf("upload: invalid s3 url %q: %w", raw, err)
	}
	if u.Scheme != "s3" {
		return S3Object{}, fmt.Errorf("upload: %q is not an s3:// url", raw)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return S3Object{}, fmt.Errorf("upload: s3 url %q needs a bucket and a key", raw)
	}
	return S3Object{Bucket: u.Host, Key: key}, nil
}

// IsS3URL reports whether s looks like an s3:// URL.
func IsS3URL(s string) bool {
	return strings.HasPrefix(s, "s3://")
}

// S3Input is a FileInput whose selection lives in S3.
//
// Example usage:
//
//	client := s3.NewFromConfig(cfg)
//	obj, _ := upload.ParseS3URL("s3://resumes/jane/cv.pdf")
//	input := upload.NewS3Input(client, obj)
//	h := upload.New(input, transport)
type S3Input struct {
	client S3API

	mu      sync.RWMutex
	objects []S3Object
}

// NewS3Input creates an S3Input with objects selected.
func NewS3Input(client S3API, objects ...S3Object) *S3Input {
	in := &S3Input{client: client}
	in.Select(objects...)
	return in
}

// Select replaces the current selection.
func (in *S3Input) Select(objects ...S3Object) {
	in.mu.Lock()
	in.objects = append([]S3Object(nil), objects...)
	in.mu.Unlock()
}

// Clear empties the selection.
func (in *S3Input) Clear() {
	in.mu.Lock()
	in.objects = nil
	in.mu.Unlock()
}

// Files implements FileInput. Object contents are fetched when the file is
// opened, not here. ContentType is guessed from the key until then; the
// object's own Content-Type and length are used once it is fetched.
func (in *S3Input) Files() []File {
	in.mu.RLock()
	objects := append([]S3Object(nil), in.objects...)
	in.mu.RUnlock()

	if len(objects) == 0 {
		return nil
	}
	files := make([]File, 0, len(objects))
	for _, obj := range objects {
		files = append(files, in.file(obj))
	}
	return files
}

func (in *S3Input) file(obj S3Object) File {
	return File{
		Name:        path.Base(obj.Key),
		ContentType: mime.TypeByExtension(path.Ext(obj.Key)),
		Opener: func(ctx context.Context) (io.ReadCloser, error) {
			out, err := in.client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(obj.Bucket),
				Key:    aws.String(obj.Key),
			})
			if err != nil {
				return nil, fmt.Errorf("s3 get %s: %w", obj, err)
			}
			return &objectBody{
				ReadCloser:  out.Body,
				contentType: objectContentType(aws.ToString(out.ContentType)),
				size:        aws.ToInt64(out.ContentLength),
			}, nil
		},
	}
}

// objectContentType drops the type S3 assigns to objects stored without
// one, so the extension-based guess is kept.
func objectContentType(ct string) string {
	if ct == "binary/octet-stream" {
		return ""
	}
	return ct
}

// objectBody carries the metadata GetObject returned alongside the body.
type objectBody struct {
	io.ReadCloser
	contentType string
	size        int64
}

func (b *objectBody) ContentType() string { return b.contentType }

func (b *objectBody) Size() int64 { return b.size }
