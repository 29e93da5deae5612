package media

import (
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/markgrovs/anki-spanish/pkg/logger"
)

const (
	DefaultMaxCells = 9
	jpegQuality     = 90
)

// Composer merges several source images into one file.
type Composer interface {
	Compose(sources []string, outPath string) error
}

// Layout describes the collage grid for a number of images.
type Layout struct {
	Cols, Rows            int
	TileWidth, TileHeight int
}

// LayoutFor returns the grid used for n images: two side by side, a 2x2
// grid for three or four, and three columns with smaller tiles beyond that.
func LayoutFor(n int) Layout {
	switch {
	case n <= 1:
		return Layout{Cols: 1, Rows: 1, TileWidth: 600, TileHeight: 450}
	case n == 2:
		return Layout{Cols: 2, Rows: 1, TileWidth: 600, TileHeight: 450}
	case n <= 4:
		return Layout{Cols: 2, Rows: 2, TileWidth: 600, TileHeight: 450}
	default:
		return Layout{Cols: 3, Rows: (n + 2) / 3, TileWidth: 500, TileHeight: 375}
	}
}

type Collage struct {
	maxCells int
	logger   *logger.Logger
}

func NewCollage(maxCells int, logger *logger.Logger) *Collage {
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	return &Collage{
		maxCells: maxCells,
		logger:   logger,
	}
}

// Compose draws up to maxCells sources on a black canvas, each scaled down
// to fit its tile and centered in it, and writes a JPEG to outPath.
func (c *Collage) Compose(sources []string, outPath string) error {
	if len(sources) == 0 {
		return eris.New("no images to compose")
	}
	if len(sources) > c.maxCells {
		sources = sources[:c.maxCells]
	}

	layout := LayoutFor(len(sources))
	canvas := image.NewRGBA(image.Rect(0, 0, layout.Cols*layout.TileWidth, layout.Rows*layout.TileHeight))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	for i, path := range sources {
		src, err := decodeImage(path)
		if err != nil {
			return err
		}
		col, row := i%layout.Cols, i/layout.Cols
		tile := image.Rect(
			col*layout.TileWidth, row*layout.TileHeight,
			(col+1)*layout.TileWidth, (row+1)*layout.TileHeight,
		)
		draw.CatmullRom.Scale(canvas, fitRect(src.Bounds(), tile), src, src.Bounds(), draw.Over, nil)
	}

	if err := saveJPEG(canvas, outPath); err != nil {
		return eris.Wrapf(err, "failed to save collage %s", outPath)
	}
	c.logger.Debug("Created collage %s from %d images", outPath, len(sources))
	return nil
}

// fitRect returns the largest rectangle with src's aspect ratio that fits in
// tile without enlarging src, centered in tile.
func fitRect(src, tile image.Rectangle) image.Rectangle {
	w, h := src.Dx(), src.Dy()
	tw, th := tile.Dx(), tile.Dy()
	if w > tw || h > th {
		if w*th > h*tw {
			h = h * tw / w
			w = tw
		} else {
			w = w * th / h
			h = th
		}
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x0 := tile.Min.X + (tw-w)/2
	y0 := tile.Min.Y + (th-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open image %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to decode image %s", path)
	}
	return img, nil
}

func saveJPEG(img image.Image, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".collage-*.jpg")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
