package grove

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Screenshot queues a labeled capture of the next rendered frame. Files go
// to ScreenshotDir as <timestamp>_<label>.png.
func (g *Engine) Screenshot(label string) {
	g.screenshotQueue = append(g.screenshotQueue, label)
}

// flushScreenshots writes every queued capture of screen. Failures are
// logged and never stop the frame.
func (g *Engine) flushScreenshots(screen *ebiten.Image) {
	if len(g.screenshotQueue) == 0 {
		return
	}
	labels := g.screenshotQueue
	g.screenshotQueue = g.screenshotQueue[:0]

	paths, err := saveScreenshots(screen, g.ScreenshotDir, time.Now(), labels)
	for _, p := range paths {
		g.Logger.Info("screenshot saved", zap.String("path", p))
	}
	if err != nil {
		g.Logger.Warn("screenshot failed", zap.String("dir", g.ScreenshotDir), zap.Error(err))
	}
}

// saveScreenshots encodes screen once per label and returns the written
// paths. Every label is attempted; the errors are joined.
func saveScreenshots(screen *ebiten.Image, dir string, at time.Time, labels []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	b := screen.Bounds()
	pix := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pix)
	img := unpremultiply(pix, b.Dx(), b.Dy())

	var written []string
	var errs []error
	for i, label := range labels {
		path := screenshotPath(dir, at, label, i)
		if err := writePNG(path, img); err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}

// unpremultiply converts premultiplied RGBA pixels to straight alpha.
func unpremultiply(pix []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pix)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := i; c < i+3; c++ {
			img.Pix[c] = uint8(min(int(img.Pix[c])*255/a, 255))
		}
	}
	return img
}

// screenshotPath names capture n of a frame. Repeated labels in the same
// frame get a numeric suffix.
func screenshotPath(dir string, at time.Time, label string, n int) string {
	name := at.Format("20060102_150405") + "_" + sanitizeLabel(label)
	if n > 0 {
		name += fmt.Sprintf("_%d", n)
	}
	return filepath.Join(dir, name+".png")
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replaces everything
// else with '_', and names empty labels "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
