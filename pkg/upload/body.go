package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

const defaultPartContentType = "application/octet-stream"

// maxPrealloc bounds how much of a size hint is allocated before the copy.
const maxPrealloc = 8 << 20

// objectInfo is implemented by readers that know the metadata of what they
// read. Reported values replace the File's listing-time guesses.
type objectInfo interface {
	ContentType() string
	Size() int64
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// NewBody encodes f as a multipart/form-data body holding a single part
// named FieldName. It returns the body and its Content-Type, boundary
// included.
func NewBody(ctx context.Context, f File) (*bytes.Buffer, string, error) {
	rc, err := f.Open(ctx)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	if info, ok := rc.(objectInfo); ok {
		if ct := info.ContentType(); ct != "" {
			f.ContentType = ct
		}
		if n := info.Size(); n > 0 {
			f.Size = n
		}
	}

	var buf bytes.Buffer
	if n := f.Size; n > 0 {
		buf.Grow(int(min(n, maxPrealloc)) + 512)
	}
	w := multipart.NewWriter(&buf)

	part, err := w.CreatePart(partHeader(f))
	if err != nil {
		return nil, "", fmt.Errorf("upload: create part: %w", err)
	}
	if _, err := io.Copy(part, rc); err != nil {
		return nil, "", readError(err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("upload: close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func partHeader(f File) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FieldName, quoteEscaper.Replace(f.Name)))

	contentType := f.ContentType
	if contentType == "" {
		contentType = defaultPartContentType
	}
	h.Set("Content-Type", contentType)
	return h
}
