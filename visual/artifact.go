// Package visual implements screenshot capture, the on-disk baseline store,
// and the pixel-diff engine used for visual regression checks.
package visual

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/google/uuid"
)

// Screenshotter is anything that can produce PNG screenshot bytes: a whole
// browser session or a single element handle.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Artifact is one captured screenshot: the raw PNG bytes plus decoded image
// and capture metadata. Artifacts are handed to the diff engine and not
// retained afterwards unless a baseline update is requested.
type Artifact struct {
	ID         string
	PNG        []byte
	Image      image.Image
	Viewport   image.Point
	CapturedAt time.Time
}

// Capture takes a screenshot from the given source and wraps it as an
// Artifact. The PNG is decoded immediately so that malformed driver output is
// caught at capture time rather than during comparison.
func Capture(ctx context.Context, src Screenshotter) (Artifact, error) {
	data, err := src.Screenshot(ctx)
	if err != nil {
		return Artifact{}, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return Artifact{}, fmt.Errorf("captured screenshot is not a valid PNG: %w", err)
	}
	bounds := img.Bounds()
	return Artifact{
		ID:         uuid.NewString(),
		PNG:        data,
		Image:      img,
		Viewport:   image.Pt(bounds.Dx(), bounds.Dy()),
		CapturedAt: time.Now(),
	}, nil
}

// ArtifactFromImage wraps an already decoded image as an Artifact, encoding
// it to PNG. Used by tests and by callers that post-process captures.
func ArtifactFromImage(img image.Image) (Artifact, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Artifact{}, err
	}
	bounds := img.Bounds()
	return Artifact{
		ID:         uuid.NewString(),
		PNG:        buf.Bytes(),
		Image:      img,
		Viewport:   image.Pt(bounds.Dx(), bounds.Dy()),
		CapturedAt: time.Now(),
	}, nil
}
