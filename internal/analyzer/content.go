package analyzer

import (
	"image"
	"image/color"
)

// ContentDetector finds pixels brighter than the background and groups
// them into blocks. Frames are expected on a dark background.
type ContentDetector struct {
	Threshold    uint8 // Minimum luma of a lit pixel
	Gap          int   // Pixels bridged when joining nearby strokes
	MinBlockArea int   // Smaller blocks are noise
}

// NewContentDetector creates a new detector with default settings
func NewContentDetector() *ContentDetector {
	return &ContentDetector{
		Threshold:    40,
		Gap:          3,
		MinBlockArea: 4,
	}
}

// Detect finds regions of drawn content
func (d *ContentDetector) Detect(img image.Image) ([]Block, error) {
	mask, lit := d.threshold(img)
	if d.Gap > 0 {
		mask = dilate(mask, d.Gap)
	}

	var blocks []Block
	for _, rect := range findContours(mask) {
		area := countLit(lit, rect)
		if area >= d.MinBlockArea {
			blocks = append(blocks, Block{Rect: rect, Area: area})
		}
	}
	return blocks, nil
}

// threshold returns the dilation input and the raw lit mask
func (d *ContentDetector) threshold(img image.Image) (*image.Gray, *image.Gray) {
	bounds := img.Bounds()
	mask := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y >= d.Threshold {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	lit := image.NewGray(bounds)
	copy(lit.Pix, mask.Pix)
	return mask, lit
}

func countLit(lit *image.Gray, rect image.Rectangle) int {
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if lit.GrayAt(x, y).Y > 128 {
				n++
			}
		}
	}
	return n
}

// dilate grows lit pixels by radius in every direction, separably
func dilate(img *image.Gray, radius int) *image.Gray {
	bounds := img.Bounds()
	horiz := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.GrayAt(x, y).Y == 0 {
				continue
			}
			for k := max(bounds.Min.X, x-radius); k <= min(bounds.Max.X-1, x+radius); k++ {
				horiz.SetGray(k, y, color.Gray{Y: 255})
			}
		}
	}

	result := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if horiz.GrayAt(x, y).Y == 0 {
				continue
			}
			for k := max(bounds.Min.Y, y-radius); k <= min(bounds.Max.Y-1, y+radius); k++ {
				result.SetGray(x, k, color.Gray{Y: 255})
			}
		}
	}
	return result
}

// findContours finds bounding rectangles of connected lit regions
func findContours(img *image.Gray) []image.Rectangle {
	bounds := img.Bounds()
	visited := make([]bool, bounds.Dx()*bounds.Dy())
	index := func(x, y int) int {
		return (y-bounds.Min.Y)*bounds.Dx() + (x - bounds.Min.X)
	}

	var contours []image.Rectangle
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.GrayAt(x, y).Y <= 128 || visited[index(x, y)] {
				continue
			}

			// Flood fill the component and track its bounds
			rect := image.Rect(x, y, x+1, y+1)
			stack := []image.Point{{X: x, Y: y}}
			visited[index(x, y)] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				rect = rect.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for _, n := range [4]image.Point{{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1}} {
					if !n.In(bounds) || visited[index(n.X, n.Y)] || img.GrayAt(n.X, n.Y).Y <= 128 {
						continue
					}
					visited[index(n.X, n.Y)] = true
					stack = append(stack, n)
				}
			}
			contours = append(contours, rect)
		}
	}
	return contours
}
