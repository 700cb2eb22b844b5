package visual

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// ErrDimensionMismatch is returned by Compare when the capture and baseline
// have different dimensions and no resize policy is configured.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// DimensionMismatchError carries the differing sizes; it wraps
// ErrDimensionMismatch.
type DimensionMismatchError struct {
	BaselineID string
	Captured   image.Point
	Baseline   image.Point
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("capture is %dx%d but baseline %q is %dx%d",
		e.Captured.X, e.Captured.Y, e.BaselineID, e.Baseline.X, e.Baseline.Y)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// DiffResult is the outcome of comparing a capture against a baseline.
type DiffResult struct {
	BaselineID string
	// Score is the mean absolute RGB channel delta over all pixels,
	// normalized to [0,1]: 0 for identical images, 1 for e.g. pure black
	// against pure white.
	Score float64
	// DifferingPixels counts pixels with any channel delta.
	DifferingPixels int
	TotalPixels     int
	Threshold       float64
	Pass            bool
	// Annotated highlights differing pixels on the captured image. Nil unless
	// Options.Annotate was set and the comparison failed.
	Annotated image.Image
}

// Options configures a Differ.
type Options struct {
	// Threshold is the maximum passing score. The default of zero demands
	// pixel-identical captures.
	Threshold float64
	// ResizeToBaseline scales the capture to the baseline's dimensions before
	// comparing instead of failing with a dimension mismatch. Off by default:
	// silent scaling can mask real layout regressions.
	ResizeToBaseline bool
	// Annotate produces a diff image with differing pixels marked when a
	// comparison fails.
	Annotate bool
}

// Differ compares captured screenshots against stored baselines.
type Differ struct {
	store *Store
	opts  Options
}

func NewDiffer(store *Store, opts Options) *Differ {
	return &Differ{store: store, opts: opts}
}

// Compare pixel-compares the artifact against the stored baseline. The result
// is deterministic: the same artifact and baseline always yield the same
// DiffResult.
func (d *Differ) Compare(artifact Artifact, baselineID string) (DiffResult, error) {
	baseline, err := d.store.Load(baselineID)
	if err != nil {
		return DiffResult{}, err
	}

	captured := artifact.Image
	cb, bb := captured.Bounds(), baseline.Bounds()
	if cb.Dx() != bb.Dx() || cb.Dy() != bb.Dy() {
		if !d.opts.ResizeToBaseline {
			return DiffResult{}, &DimensionMismatchError{
				BaselineID: baselineID,
				Captured:   image.Pt(cb.Dx(), cb.Dy()),
				Baseline:   image.Pt(bb.Dx(), bb.Dy()),
			}
		}
		captured = resize(captured, bb.Dx(), bb.Dy())
		cb = captured.Bounds()
	}

	result := DiffResult{
		BaselineID:  baselineID,
		Threshold:   d.opts.Threshold,
		TotalPixels: bb.Dx() * bb.Dy(),
	}

	capturedRGBA := toRGBA(captured)
	baselineRGBA := toRGBA(baseline)

	var annotated *image.RGBA
	if d.opts.Annotate {
		annotated = image.NewRGBA(image.Rect(0, 0, bb.Dx(), bb.Dy()))
		xdraw.Copy(annotated, image.Point{}, capturedRGBA, capturedRGBA.Bounds(), xdraw.Src, nil)
	}

	var totalDelta uint64
	w, h := bb.Dx(), bb.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := capturedRGBA.RGBAAt(x, y)
			b := baselineRGBA.RGBAAt(x, y)
			delta := absDelta(c.R, b.R) + absDelta(c.G, b.G) + absDelta(c.B, b.B)
			if delta > 0 {
				result.DifferingPixels++
				totalDelta += uint64(delta)
				if annotated != nil {
					annotated.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
				}
			}
		}
	}

	if result.TotalPixels > 0 {
		result.Score = float64(totalDelta) / float64(3*255*result.TotalPixels)
	}
	result.Pass = result.Score <= d.opts.Threshold
	if !result.Pass && annotated != nil {
		result.Annotated = annotated
	}
	return result, nil
}

// UpdateBaseline overwrites the stored baseline with the artifact. This is an
// explicit operator action, never a side effect of a failed comparison.
func (d *Differ) UpdateBaseline(artifact Artifact, baselineID string) error {
	return d.store.Save(baselineID, artifact.PNG)
}

func absDelta(a, b uint8) uint32 {
	if a > b {
		return uint32(a - b)
	}
	return uint32(b - a)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(rgba, image.Point{}, img, bounds, xdraw.Src, nil)
	return rgba
}

func resize(img image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
