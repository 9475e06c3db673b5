package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// FormFile is one file part of a multipart upload.
type FormFile struct {
	Field    string
	Filename string
	Reader   io.Reader
}

// DoMultipart uploads a file plus string form fields. It reuses the
// pipeline's 401 handling: the encoded form is buffered so the call can
// be replayed once after a token refresh.
func (c *Client) DoMultipart(ctx context.Context, path string, file FormFile, fields map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(file.Field, file.Filename)
	if err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("encode upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}

	return c.doRaw(ctx, http.MethodPost, path, w.FormDataContentType(), buf.Bytes(), out)
}
