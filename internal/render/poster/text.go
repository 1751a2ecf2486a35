package poster

import (
	"image"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce    sync.Once
	fontRegular *opentype.Font
	fontBold    *opentype.Font
	faceMu      sync.Mutex
	faceCache   = map[faceKey]font.Face{}
)

type faceKey struct {
	size float64
	bold bool
}

func newFace(size float64, bold bool) font.Face {
	fontOnce.Do(func() {
		fontRegular, _ = opentype.Parse(goregular.TTF)
		fontBold, _ = opentype.Parse(gobold.TTF)
	})

	faceMu.Lock()
	defer faceMu.Unlock()
	key := faceKey{size: size, bold: bold}
	if face, ok := faceCache[key]; ok {
		return face
	}

	src := fontRegular
	if bold {
		src = fontBold
	}
	if src == nil {
		return nil
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	faceCache[key] = face
	return face
}

func drawString(img *image.RGBA, text string, x, y int, c color.Color, face font.Face) {
	if face == nil {
		return
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// drawCenteredString draws text horizontally centered on cx with baseline y.
func drawCenteredString(img *image.RGBA, text string, cx, y int, c color.Color, face font.Face) {
	if face == nil {
		return
	}
	w := font.MeasureString(face, text).Ceil()
	drawString(img, text, cx-w/2, y, c, face)
}

// wrapText greedily wraps text into lines no wider than maxWidth pixels.
func wrapText(text string, face font.Face, maxWidth int) []string {
	if face == nil {
		return []string{text}
	}

	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if font.MeasureString(face, candidate).Ceil() > maxWidth && line != "" {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
