package audit_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/internal/audit"
	"github.com/markgrovs/anki-spanish/internal/media"
	"github.com/markgrovs/anki-spanish/internal/scanner"
	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/models"
)

var _ = Describe("Run", func() {
	It("counts what each row lacks", func() {
		log := logger.New(logger.WithOutput(GinkgoWriter))
		root := GinkgoT().TempDir()
		dirs := media.Dirs{Images: filepath.Join(root, "images"), Audio: filepath.Join(root, "audio")}
		Expect(os.MkdirAll(filepath.Join(dirs.Images, "mesa"), 0755)).To(Succeed())
		Expect(os.MkdirAll(dirs.Audio, 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dirs.Images, "perro.jpg"), []byte("x"), 0644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dirs.Images, "mesa", "1.png"), []byte("x"), 0644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dirs.Audio, "el_perro.mp3"), []byte("x"), 0644)).To(Succeed())
		resolver := media.NewResolver(dirs, scanner.New(log), nil, log)

		records := []*models.Record{
			{Spanish: "perro", POS: "noun", Gender: "m", IPA: "/ˈpe.ro/"},
			{Spanish: "mesa", POS: "noun"},
			{Spanish: "comer", POS: "verb", IPA: "/koˈmeɾ/"},
			{English: "orphan"},
		}

		r, err := audit.Run(context.Background(), records, resolver)
		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(Equal(audit.Report{
			Total:          4,
			MissingSpanish: 1,
			MissingGender:  1,
			MissingIPA:     1,
			MissingImage:   1,
			MissingAudio:   2,
		}))
		Expect(r.Table()).To(ContainSubstring("Missing audio"))
	})
})
