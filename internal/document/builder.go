package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// frameMarker matches prose references like "frame 5" or "Frame 12". The
// number is the 1-based key-frame position.
var frameMarker = regexp.MustCompile(`(?i)\bframe\s+(\d+)\b`)

// Image is one embeddable final image addressed by key-frame position.
type Image struct {
	Position int
	// RelPath is the path embedded in the markdown, relative to the bundle.
	RelPath string
}

// Build resolves frame markers in the narrative against the available
// images. After the first line referencing a position, the corresponding
// image is embedded once. Markers with no matching image are left as prose
// and skipped. Images never referenced are appended in a trailing section so
// nothing the reviewer approved is lost.
func Build(narrative string, images []Image) string {
	byPosition := make(map[int]Image, len(images))
	for _, img := range images {
		byPosition[img.Position] = img
	}

	embedded := make(map[int]bool, len(images))
	var out strings.Builder
	for _, line := range strings.Split(narrative, "\n") {
		out.WriteString(line)
		out.WriteByte('\n')

		for _, match := range frameMarker.FindAllStringSubmatch(line, -1) {
			position, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			img, ok := byPosition[position]
			if !ok || embedded[position] {
				continue
			}
			embedded[position] = true
			out.WriteString(fmt.Sprintf("\n![Frame %d](%s)\n", position, img.RelPath))
		}
	}

	var remaining []Image
	for _, img := range images {
		if !embedded[img.Position] {
			remaining = append(remaining, img)
		}
	}
	if len(remaining) > 0 {
		out.WriteString("\n## Additional Frames\n")
		for _, img := range remaining {
			out.WriteString(fmt.Sprintf("\n![Frame %d](%s)\n", img.Position, img.RelPath))
		}
	}

	return out.String()
}
