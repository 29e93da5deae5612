package scanner_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/internal/scanner"
	"github.com/markgrovs/anki-spanish/pkg/logger"
)

var _ = Describe("Scanner", func() {
	var (
		testDir    string
		testLogger *logger.Logger
		ctx        context.Context
	)

	BeforeEach(func() {
		var err error
		testDir, err = os.MkdirTemp("", "scanner-test-*")
		Expect(err).NotTo(HaveOccurred())

		testLogger = logger.New(logger.WithOutput(GinkgoWriter), logger.WithPrefix("[test]"))
		ctx = context.Background()
	})

	AfterEach(func() {
		os.RemoveAll(testDir)
	})

	write := func(name string) {
		path := filepath.Join(testDir, name)
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(os.WriteFile(path, []byte("img"), 0644)).To(Succeed())
	}

	Context("when listing a word folder", func() {
		BeforeEach(func() {
			write("perro/b.png")
			write("perro/a.JPG")
			write("perro/c.webp")
			write("perro/notes.txt")
			write("perro/nested/d.jpg")
		})

		It("should return only images in lexical order", func() {
			s := scanner.New(testLogger)
			images, err := s.FindImages(ctx, filepath.Join(testDir, "perro"))

			Expect(err).NotTo(HaveOccurred())
			Expect(images).To(HaveLen(3))
			var names []string
			for _, img := range images {
				names = append(names, filepath.Base(img))
			}
			Expect(names).To(Equal([]string{"a.JPG", "b.png", "c.webp"}))
		})
	})

	Context("when the folder does not exist", func() {
		It("should return no images and no error", func() {
			images, err := scanner.New(testLogger).FindImages(ctx, filepath.Join(testDir, "missing"))
			Expect(err).NotTo(HaveOccurred())
			Expect(images).To(BeEmpty())
		})
	})

	Context("when scanning an images root", func() {
		BeforeEach(func() {
			write("casa.jpg")
			write("gato-1.png")
			write("gato-2.png")
			write("gato_collage.jpg")
			write("perro/a.jpg")
			write("readme.md")
		})

		It("should count images, collages and folders", func() {
			stats, err := scanner.New(testLogger).ScanDirectory(ctx, testDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal(scanner.Stats{ImageCount: 4, CollageCount: 1, FolderCount: 1}))
		})
	})

	Context("when context is cancelled", func() {
		It("should stop scanning", func() {
			deepDir := filepath.Join(testDir, "deep", "deeper", "deepest")
			err := os.MkdirAll(deepDir, 0755)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			s := scanner.New(testLogger)
			_, err = s.ScanDirectory(ctx, testDir)

			Expect(err).To(Equal(context.Canceled))
		})
	})
})
