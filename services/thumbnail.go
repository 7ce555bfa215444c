package services

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"os"

	"contentbot/config"
)

// thumbnailPalettes are the three-stop gradients a title can map to.
// The first one matches the original channel artwork.
var thumbnailPalettes = [][3]color.RGBA{
	{{0xFF, 0x6B, 0x6B, 0xFF}, {0x4E, 0xCD, 0xC4, 0xFF}, {0x45, 0xB7, 0xD1, 0xFF}},
	{{0xF7, 0x97, 0x1E, 0xFF}, {0xFF, 0xD2, 0x00, 0xFF}, {0xFF, 0x6F, 0x61, 0xFF}},
	{{0x43, 0x4E, 0xE8, 0xFF}, {0x8E, 0x54, 0xE9, 0xFF}, {0xC0, 0x6C, 0x84, 0xFF}},
	{{0x11, 0x99, 0x8E, 0xFF}, {0x38, 0xEF, 0x7D, 0xFF}, {0x00, 0x7A, 0x87, 0xFF}},
}

// RenderThumbnail writes a PNG with a diagonal gradient whose colors are
// derived from the title, so the same title always gets the same artwork
func RenderThumbnail(title, path string) error {
	palette := paletteFor(title)
	w, h := config.ThumbnailWidth, config.ThumbnailHeight
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// position along the top-left to bottom-right diagonal
			t := (float64(x)/float64(w-1) + float64(y)/float64(h-1)) / 2
			img.SetRGBA(x, y, gradient(palette, t))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return f.Close()
}

func paletteFor(title string) [3]color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(title))
	return thumbnailPalettes[h.Sum32()%uint32(len(thumbnailPalettes))]
}

// gradient interpolates the three stops at 0, 0.5 and 1
func gradient(stops [3]color.RGBA, t float64) color.RGBA {
	if t <= 0.5 {
		return lerp(stops[0], stops[1], t*2)
	}
	return lerp(stops[1], stops[2], (t-0.5)*2)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xFF}
}
