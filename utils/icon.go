package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Discord rejects role icons larger than 256 KiB.
const maxIconBytes = 256 * 1024

// FetchIconDataURI downloads an image and encodes it as the base64
// data URI Discord expects for role icons.
func FetchIconDataURI(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build icon request: %w", err)
	}

	resp, err := GlobalHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download icon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("icon download returned status %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("icon URL does not point to an image (got %q)", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read icon body: %w", err)
	}
	if len(data) > maxIconBytes {
		return "", fmt.Errorf("icon is too large (max %d KiB)", maxIconBytes/1024)
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}
