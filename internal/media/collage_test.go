package media_test

import (
	"image/color"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/internal/media"
)

var _ = Describe("Collage", func() {
	DescribeTable("layout",
		func(n int, expected media.Layout) {
			Expect(media.LayoutFor(n)).To(Equal(expected))
		},
		Entry("two", 2, media.Layout{Cols: 2, Rows: 1, TileWidth: 600, TileHeight: 450}),
		Entry("three", 3, media.Layout{Cols: 2, Rows: 2, TileWidth: 600, TileHeight: 450}),
		Entry("four", 4, media.Layout{Cols: 2, Rows: 2, TileWidth: 600, TileHeight: 450}),
		Entry("five", 5, media.Layout{Cols: 3, Rows: 2, TileWidth: 500, TileHeight: 375}),
		Entry("nine", 9, media.Layout{Cols: 3, Rows: 3, TileWidth: 500, TileHeight: 375}),
	)

	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("centers small images without enlarging them", func() {
		a := filepath.Join(dir, "a.png")
		b := filepath.Join(dir, "b.jpg")
		writeImage(a, 100, 100, color.RGBA{255, 255, 255, 255})
		writeImage(b, 1200, 900, color.RGBA{255, 255, 255, 255})

		out := filepath.Join(dir, "out.jpg")
		Expect(media.NewCollage(9, testLogger()).Compose([]string{a, b}, out)).To(Succeed())

		img := readJPEG(out)
		Expect(img.Bounds().Dx()).To(Equal(1200))
		Expect(img.Bounds().Dy()).To(Equal(450))

		r, _, _, _ := img.At(10, 10).RGBA()
		Expect(r >> 8).To(BeNumerically("<", 30))
		r, _, _, _ = img.At(300, 225).RGBA()
		Expect(r >> 8).To(BeNumerically(">", 220))
		r, _, _, _ = img.At(900, 225).RGBA()
		Expect(r >> 8).To(BeNumerically(">", 220))
	})

	It("caps the number of cells", func() {
		var sources []string
		for i := 0; i < 6; i++ {
			p := filepath.Join(dir, string(rune('a'+i))+".png")
			writeImage(p, 10, 10, color.White)
			sources = append(sources, p)
		}
		out := filepath.Join(dir, "out.jpg")
		Expect(media.NewCollage(4, testLogger()).Compose(sources, out)).To(Succeed())
		Expect(readJPEG(out).Bounds().Dx()).To(Equal(1200))
	})

	It("fails on unreadable images", func() {
		out := filepath.Join(dir, "out.jpg")
		err := media.NewCollage(9, testLogger()).Compose([]string{filepath.Join(dir, "nope.png"), filepath.Join(dir, "nope2.png")}, out)
		Expect(err).To(HaveOccurred())
	})
})
