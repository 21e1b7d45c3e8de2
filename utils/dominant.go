package utils

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
)

// FetchDominantColor downloads an image and averages its pixels into a
// single representative color, returned as a #RRGGBB string. Fully
// transparent pixels are skipped so avatars with round crops don't
// skew toward black.
func FetchDominantColor(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build avatar request: %w", err)
	}

	resp, err := GlobalHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("avatar download returned status %s", resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode avatar image: %w", err)
	}

	return DominantColor(img), nil
}

// DominantColor averages the opaque pixels of an image, sampling a
// coarse grid so large images stay cheap.
func DominantColor(img image.Image) string {
	bounds := img.Bounds()
	stepX := max(1, bounds.Dx()/64)
	stepY := max(1, bounds.Dy()/64)

	var rSum, gSum, bSum, count uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			rSum += uint64(r >> 8)
			gSum += uint64(g >> 8)
			bSum += uint64(b >> 8)
			count++
		}
	}
	if count == 0 {
		return "#000000"
	}
	return fmt.Sprintf("#%02X%02X%02X", rSum/count, gSum/count, bSum/count)
}
