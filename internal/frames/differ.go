package frames

import (
	"context"
	"image"
	"log/slog"
	"os"

	"golang.org/x/image/draw"

	_ "image/jpeg"
	_ "image/png"

	"screendoc/internal/logging"
)

// Comparison thumbnail size. Screen recordings carry their signal in layout
// changes, not fine detail, so a small fixed raster is enough.
const (
	thumbWidth  = 320
	thumbHeight = 180
)

// Differencer scores frames by change against the previous frame and by
// stability against a short lookahead window.
type Differencer struct {
	window    int
	tailBonus float64
	logger    *slog.Logger
}

// NewDifferencer constructs a Differencer. window is the lookahead length in
// frames; tailBonus is the stability credit granted to frames too close to
// the end to have a full window.
func NewDifferencer(window int, tailBonus float64, logger *slog.Logger) *Differencer {
	if window <= 0 {
		window = 1
	}
	return &Differencer{
		window:    window,
		tailBonus: tailBonus,
		logger:    logging.NewComponentLogger(logger, "differencer"),
	}
}

// Score computes difference and stability scores for every frame.
// Unreadable frames score 0 on both axes and are never an error.
func (d *Differencer) Score(ctx context.Context, list []Frame) []Score {
	scores := make([]Score, len(list))
	thumbs := make([]*image.Gray, len(list))

	for i, frame := range list {
		if err := ctx.Err(); err != nil {
			break
		}
		thumb, err := loadThumb(frame.Path)
		if err != nil {
			d.logger.Warn("unreadable frame, scoring zero",
				logging.Int(logging.FieldFrame, frame.Index),
				logging.Error(err))
		}
		thumbs[i] = thumb
		scores[i].Index = frame.Index
	}

	for i := range list {
		if thumbs[i] == nil {
			continue
		}
		if i > 0 && thumbs[i-1] != nil {
			scores[i].Difference = meanAbsDiff(thumbs[i-1], thumbs[i])
		}
		scores[i].Stability = d.stability(thumbs, i)
	}
	return scores
}

func (d *Differencer) stability(thumbs []*image.Gray, i int) float64 {
	if i+d.window >= len(thumbs) {
		return d.tailBonus
	}
	var total float64
	counted := 0
	for j := 1; j <= d.window; j++ {
		next := thumbs[i+j]
		if next == nil {
			continue
		}
		total += meanAbsDiff(thumbs[i], next)
		counted++
	}
	if counted == 0 {
		return 0
	}
	score := 255 - total/float64(counted)
	if score < 0 {
		return 0
	}
	return score
}

func loadThumb(path string) (*image.Gray, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}

	thumb := image.NewGray(image.Rect(0, 0, thumbWidth, thumbHeight))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), src, src.Bounds(), draw.Src, nil)
	return thumb, nil
}

func meanAbsDiff(a, b *image.Gray) float64 {
	if len(a.Pix) == 0 || len(a.Pix) != len(b.Pix) {
		return 0
	}
	var total int64
	for i := range a.Pix {
		diff := int64(a.Pix[i]) - int64(b.Pix[i])
		if diff < 0 {
			diff = -diff
		}
		total += diff
	}
	return float64(total) / float64(len(a.Pix))
}
