package frames_test

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"screendoc/internal/frames"
)

func writeSolidFrame(t *testing.T, dir, name string, level uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 36))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestListSortsAndIndexes(t *testing.T) {
	dir := t.TempDir()
	writeSolidFrame(t, dir, "frame_0002.png", 0)
	writeSolidFrame(t, dir, "frame_0001.png", 0)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := frames.List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(list))
	}
	if list[0].Index != 0 || filepath.Base(list[0].Path) != "frame_0001.png" {
		t.Fatalf("unexpected first frame: %+v", list[0])
	}
	if list[1].Index != 1 {
		t.Fatalf("unexpected second index: %d", list[1].Index)
	}
}

func TestScoreDifferenceAndStability(t *testing.T) {
	dir := t.TempDir()
	// Six identical frames, a hard cut, then three identical frames.
	levels := []uint8{10, 10, 10, 10, 10, 10, 200, 200, 200}
	list := make([]frames.Frame, len(levels))
	for i, level := range levels {
		path := writeSolidFrame(t, dir, fileName(i), level)
		list[i] = frames.Frame{Index: i, Path: path}
	}

	d := frames.NewDifferencer(3, 20, nil)
	scores := d.Score(context.Background(), list)
	if len(scores) != len(list) {
		t.Fatalf("expected %d scores, got %d", len(list), len(scores))
	}

	if scores[0].Difference != 0 {
		t.Fatalf("first frame difference should be 0, got %g", scores[0].Difference)
	}
	if scores[1].Difference > 1 {
		t.Fatalf("identical frames should diff near 0, got %g", scores[1].Difference)
	}
	if scores[6].Difference < 150 {
		t.Fatalf("hard cut should score high difference, got %g", scores[6].Difference)
	}

	// Frame 0 looks ahead at identical frames: near-max stability.
	if scores[0].Stability < 250 {
		t.Fatalf("stable frame should score near 255, got %g", scores[0].Stability)
	}
	// Frame 5 looks ahead across the cut: stability drops.
	if scores[5].Stability >= scores[0].Stability {
		t.Fatalf("frame before cut should be less stable: %g vs %g", scores[5].Stability, scores[0].Stability)
	}
	// The last window-sized run gets the tail bonus.
	for i := 6; i < len(levels); i++ {
		if scores[i].Stability != 20 {
			t.Fatalf("frame %d should get tail bonus 20, got %g", i, scores[i].Stability)
		}
	}
}

func TestScoreUnreadableFrames(t *testing.T) {
	dir := t.TempDir()
	good := writeSolidFrame(t, dir, "frame_0000.png", 50)
	bad := filepath.Join(dir, "frame_0001.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "frame_0002.png")

	list := []frames.Frame{
		{Index: 0, Path: good},
		{Index: 1, Path: bad},
		{Index: 2, Path: missing},
	}
	d := frames.NewDifferencer(3, 20, nil)
	scores := d.Score(context.Background(), list)

	for _, i := range []int{1, 2} {
		if scores[i].Difference != 0 || scores[i].Stability != 0 {
			t.Fatalf("unreadable frame %d should score 0/0, got %+v", i, scores[i])
		}
	}
}

func fileName(i int) string {
	return "frame_" + string(rune('0'+i)) + ".png"
}
