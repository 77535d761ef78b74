package redact

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"screendoc/internal/ocr"
	"screendoc/internal/pii"
)

const (
	// boundingBoxPad expands each detected region before rendering so
	// sub-pixel OCR jitter cannot leave readable edges.
	boundingBoxPad = 5
	blurRadius     = 15
	blurPasses     = 3
	pixelateGrid   = 8
	outlineWidth   = 3
	jpegQuality    = 90
)

var previewRed = color.RGBA{R: 220, G: 20, B: 20, A: 255}

// paddedRect pads a region's bounding box and clamps it to image bounds.
func paddedRect(region ocr.TextRegion, bounds image.Rectangle) image.Rectangle {
	r := image.Rect(
		region.X1-boundingBoxPad,
		region.Y1-boundingBoxPad,
		region.X2+boundingBoxPad,
		region.Y2+boundingBoxPad,
	)
	return r.Intersect(bounds)
}

// Preview writes a copy of the image with red outlines and type labels
// around every match. Source pixels inside the boxes are left untouched.
func Preview(imagePath, outputPath string, matches []pii.Match) error {
	img, err := loadRGBA(imagePath)
	if err != nil {
		return fmt.Errorf("preview %s: %w", imagePath, err)
	}

	for _, match := range matches {
		box := image.Rect(match.Region.X1, match.Region.Y1, match.Region.X2, match.Region.Y2).
			Intersect(img.Bounds())
		if box.Empty() {
			continue
		}
		drawOutline(img, box, previewRed, outlineWidth)
		drawLabel(img, match.Type, box.Min.X, box.Min.Y-15)
	}

	return saveImage(outputPath, img)
}

// Apply writes a copy of the image with every match redacted in the given
// mode. Pixels outside the padded boxes are bit-identical to the source.
func Apply(imagePath, outputPath string, matches []pii.Match, mode Mode) error {
	switch mode {
	case ModeBlur, ModeBlack, ModePixelate:
	default:
		return fmt.Errorf("apply redactions: unknown mode %q", mode)
	}

	img, err := loadRGBA(imagePath)
	if err != nil {
		return fmt.Errorf("redact %s: %w", imagePath, err)
	}

	for _, match := range matches {
		box := paddedRect(match.Region, img.Bounds())
		if box.Empty() {
			continue
		}
		switch mode {
		case ModeBlur:
			blurRegion(img, box)
		case ModeBlack:
			draw.Draw(img, box, image.NewUniform(color.Black), image.Point{}, draw.Src)
		case ModePixelate:
			pixelateRegion(img, box)
		}
	}

	return saveImage(outputPath, img)
}

func loadRGBA(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	return rgba, nil
}

func saveImage(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output image: %w", err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".png") {
		if err := png.Encode(file, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	}
	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}

func drawOutline(img *image.RGBA, box image.Rectangle, c color.RGBA, width int) {
	bounds := img.Bounds()
	for w := 0; w < width; w++ {
		outer := image.Rect(box.Min.X-w, box.Min.Y-w, box.Max.X+w, box.Max.Y+w).Intersect(bounds)
		if outer.Empty() {
			continue
		}
		for x := outer.Min.X; x < outer.Max.X; x++ {
			img.SetRGBA(x, outer.Min.Y, c)
			img.SetRGBA(x, outer.Max.Y-1, c)
		}
		for y := outer.Min.Y; y < outer.Max.Y; y++ {
			img.SetRGBA(outer.Min.X, y, c)
			img.SetRGBA(outer.Max.X-1, y, c)
		}
	}
}

func drawLabel(img *image.RGBA, label string, x, y int) {
	if y < img.Bounds().Min.Y {
		y = img.Bounds().Min.Y + basicfont.Face7x13.Ascent
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(previewRed),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y+basicfont.Face7x13.Ascent),
	}
	drawer.DrawString(label)
}

// blurRegion approximates a Gaussian blur with repeated box blurs confined
// to the box. Sampling clamps at the box edge so no outside pixel leaks in
// or out.
func blurRegion(img *image.RGBA, box image.Rectangle) {
	for pass := 0; pass < blurPasses; pass++ {
		boxBlurPass(img, box, blurRadius, true)
		boxBlurPass(img, box, blurRadius, false)
	}
}

func boxBlurPass(img *image.RGBA, box image.Rectangle, radius int, horizontal bool) {
	w := box.Dx()
	h := box.Dy()
	src := make([]color.RGBA, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src[y*w+x] = img.RGBAAt(box.Min.X+x, box.Min.Y+y)
		}
	}

	clamp := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v >= max {
			return max - 1
		}
		return v
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a, n int
			for d := -radius; d <= radius; d++ {
				var px color.RGBA
				if horizontal {
					px = src[y*w+clamp(x+d, w)]
				} else {
					px = src[clamp(y+d, h)*w+x]
				}
				r += int(px.R)
				g += int(px.G)
				b += int(px.B)
				a += int(px.A)
				n++
			}
			img.SetRGBA(box.Min.X+x, box.Min.Y+y, color.RGBA{
				R: uint8(r / n),
				G: uint8(g / n),
				B: uint8(b / n),
				A: uint8(a / n),
			})
		}
	}
}

// pixelateRegion downsamples the box to a tiny grid and scales it back with
// nearest-neighbor sampling.
func pixelateRegion(img *image.RGBA, box image.Rectangle) {
	small := image.NewRGBA(image.Rect(0, 0, pixelateGrid, pixelateGrid))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), img, box, xdraw.Src, nil)
	xdraw.NearestNeighbor.Scale(img, box, small, small.Bounds(), xdraw.Src, nil)
}
