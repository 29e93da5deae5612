package media_test

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/internal/media"
	"github.com/markgrovs/anki-spanish/internal/scanner"
	"github.com/markgrovs/anki-spanish/pkg/models"
)

type failingComposer struct{ calls int }

func (f *failingComposer) Compose(sources []string, outPath string) error {
	f.calls++
	return errors.New("no decoder")
}

var _ = Describe("Resolver", func() {
	var (
		ctx  context.Context
		dirs media.Dirs
		scan *scanner.DirectoryScanner
	)

	BeforeEach(func() {
		ctx = context.Background()
		root := GinkgoT().TempDir()
		dirs = media.Dirs{
			Images: filepath.Join(root, "images"),
			Audio:  filepath.Join(root, "audio"),
			Gender: filepath.Join(root, "gender"),
		}
		scan = scanner.New(testLogger())
	})

	It("lists sources in naming order", func() {
		writeImage(filepath.Join(dirs.Images, "gato-2.png"), 4, 4, color.White)
		writeImage(filepath.Join(dirs.Images, "gato.jpg"), 4, 4, color.White)
		writeImage(filepath.Join(dirs.Images, "gato-1.jpg"), 4, 4, color.White)
		writeImage(filepath.Join(dirs.Images, "gato", "z.png"), 4, 4, color.White)
		writeImage(filepath.Join(dirs.Images, "gato", "a.jpg"), 4, 4, color.White)

		r := media.NewResolver(dirs, scan, nil, testLogger())
		sources, err := r.ImageSources(ctx, "gato")
		Expect(err).NotTo(HaveOccurred())
		var names []string
		for _, s := range sources {
			rel, _ := filepath.Rel(dirs.Images, s)
			names = append(names, rel)
		}
		Expect(names).To(Equal([]string{"gato.jpg", "gato-1.jpg", "gato-2.png", "gato/a.jpg", "gato/z.png"}))
	})

	It("matches file extensions regardless of case", func() {
		writeImage(filepath.Join(dirs.Images, "perro.JPG"), 4, 4, color.White)
		writeImage(filepath.Join(dirs.Images, "perro-1.Png"), 4, 4, color.White)
		writeImage(filepath.Join(dirs.Images, "perro", "b.JPEG"), 4, 4, color.White)

		sources, err := media.NewResolver(dirs, scan, nil, testLogger()).ImageSources(ctx, "perro")
		Expect(err).NotTo(HaveOccurred())
		var names []string
		for _, s := range sources {
			names = append(names, filepath.Base(s))
		}
		Expect(names).To(Equal([]string{"perro.JPG", "perro-1.Png", "b.JPEG"}))
	})

	It("uses a single source as is", func() {
		writeImage(filepath.Join(dirs.Images, "perro.jpg"), 4, 4, color.White)
		img, err := media.NewResolver(dirs, scan, media.NewCollage(9, testLogger()), testLogger()).ResolveImage(ctx, "perro")
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Name()).To(Equal("perro.jpg"))
		Expect(img.Fresh).To(BeFalse())
	})

	It("reports no image for an unknown key", func() {
		img, err := media.NewResolver(dirs, scan, nil, testLogger()).ResolveImage(ctx, "nada")
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Found()).To(BeFalse())
	})

	It("builds and then reuses a collage", func() {
		writeImage(filepath.Join(dirs.Images, "casa-1.png"), 40, 30, color.White)
		writeImage(filepath.Join(dirs.Images, "casa-2.png"), 40, 30, color.White)
		r := media.NewResolver(dirs, scan, media.NewCollage(9, testLogger()), testLogger())

		img, err := r.ResolveImage(ctx, "casa")
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Name()).To(Equal("casa_collage.jpg"))
		Expect(img.Fresh).To(BeTrue())

		again, err := r.ResolveImage(ctx, "casa")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Path).To(Equal(img.Path))
		Expect(again.Fresh).To(BeFalse())
	})

	It("falls back to the first source when the composer is disabled", func() {
		writeImage(filepath.Join(dirs.Images, "casa-1.png"), 4, 4, color.White)
		writeImage(filepath.Join(dirs.Images, "casa-2.png"), 4, 4, color.White)

		img, err := media.NewResolver(dirs, scan, nil, testLogger()).ResolveImage(ctx, "casa")
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Name()).To(Equal("casa-1.png"))
		Expect(filepath.Join(dirs.Images, "casa_collage.jpg")).NotTo(BeAnExistingFile())
	})

	It("falls back to the first source when composing fails", func() {
		writeImage(filepath.Join(dirs.Images, "casa-1.png"), 4, 4, color.White)
		writeImage(filepath.Join(dirs.Images, "casa-2.png"), 4, 4, color.White)
		composer := &failingComposer{}

		img, err := media.NewResolver(dirs, scan, composer, testLogger()).ResolveImage(ctx, "casa")
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Name()).To(Equal("casa-1.png"))
		Expect(composer.calls).To(Equal(1))
	})

	It("names audio files by the slug of the spoken text", func() {
		r := media.NewResolver(dirs, scan, nil, testLogger())
		Expect(r.AudioPath("el perro")).To(Equal(filepath.Join(dirs.Audio, "el_perro.mp3")))
		Expect(r.AudioPath("la canción")).To(Equal(filepath.Join(dirs.Audio, "la_cancion.mp3")))

		long := r.AudioPath("Mañana por la mañana vamos a comprar pan, leche y huevos en el mercado del barrio.")
		Expect(len(filepath.Base(long))).To(BeNumerically("<=", 64+len(".mp3")))
	})

	It("finds gender badges", func() {
		Expect(os.MkdirAll(dirs.Gender, 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dirs.Gender, "female.jpg"), []byte("x"), 0644)).To(Succeed())
		r := media.NewResolver(dirs, scan, nil, testLogger())
		Expect(r.GenderBadge(models.GenderFeminine)).To(Equal(filepath.Join(dirs.Gender, "female.jpg")))
		Expect(r.GenderBadge(models.GenderMasculine)).To(BeEmpty())
		Expect(r.GenderBadge(models.GenderNone)).To(BeEmpty())
	})
})
