package gallery

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// PrepareImage decodes a JPEG or PNG reference photo, shrinks it so its
// longest edge is at most maxEdge, and re-encodes it as JPEG, the only
// format the dlib engine reads.
func PrepareImage(data []byte, maxEdge int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if maxEdge > 0 && (width > maxEdge || height > maxEdge) {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxEdge
			newHeight = int(float64(height) * float64(maxEdge) / float64(width))
		} else {
			newHeight = maxEdge
			newWidth = int(float64(width) * float64(maxEdge) / float64(height))
		}
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}

		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
