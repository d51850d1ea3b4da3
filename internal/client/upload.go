package client

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
)

// UploadImage uploads the file at path through a presigned URL and returns
// the public URL to store on a listing or profile. kind is "product" or
// "avatar".
func (c *Client) UploadImage(ctx context.Context, kind, path string) (string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	up, err := c.rpc.CreateImageUpload(c.outgoing(ctx), &v1.CreateImageUploadRequest{Kind: kind, ContentType: contentType})
	if err != nil {
		return "", c.fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, up.UploadURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("upload image: storage answered %s", resp.Status)
	}
	return up.ImageURL, nil
}
