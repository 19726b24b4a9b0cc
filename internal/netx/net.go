// Package netx holds small HTTP helpers shared by the command-line tools.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is used for presigned uploads.
var Client = &http.Client{Timeout: 60 * time.Second}

// UploadToPresignedURL PUTs body to a presigned object-storage URL. An empty
// contentType is sniffed from the body. Any non-2xx answer is an error that
// carries the response body.
func UploadToPresignedURL(ctx context.Context, url string, body []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
