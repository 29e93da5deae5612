package updater_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/updater"
)

var _ = Describe("Checker", func() {
	var log *logger.Logger

	BeforeEach(func() {
		log = logger.New(logger.WithOutput(GinkgoWriter))
	})

	serve := func(status int, body string) *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Header.Get("User-Agent")).To(HavePrefix("ankiflow/"))
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		DeferCleanup(srv.Close)
		return srv
	}

	It("reports a newer release", func() {
		srv := serve(http.StatusOK, `{"tag_name": "v1.10.0", "body": "Faster audio", "html_url": "https://example.com/r"}`)
		c := updater.NewChecker(log, updater.WithURL(srv.URL), updater.WithCurrentVersion("v1.9.2"))

		info, err := c.CheckForUpdates(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsAvailable).To(BeTrue())
		Expect(info.LatestVersion).To(Equal("1.10.0"))
		Expect(info.UpdateMessage).To(Equal("Faster audio"))
		Expect(info.DownloadURL).To(Equal("https://example.com/r"))
	})

	It("says nothing is available when current", func() {
		srv := serve(http.StatusOK, `{"tag_name": "1.2.0"}`)
		info, err := updater.NewChecker(log, updater.WithURL(srv.URL), updater.WithCurrentVersion("1.2.0")).
			CheckForUpdates(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsAvailable).To(BeFalse())
	})

	It("fails on bad responses", func() {
		srv := serve(http.StatusNotFound, `{}`)
		_, err := updater.NewChecker(log, updater.WithURL(srv.URL)).CheckForUpdates(context.Background())
		Expect(err).To(HaveOccurred())

		srv = serve(http.StatusOK, `not json`)
		_, err = updater.NewChecker(log, updater.WithURL(srv.URL)).CheckForUpdates(context.Background())
		Expect(err).To(HaveOccurred())
	})
})

var _ = DescribeTable("CompareVersions",
	func(a, b string, expected int) {
		Expect(updater.CompareVersions(a, b)).To(Equal(expected))
	},
	Entry("equal", "1.2.3", "1.2.3", 0),
	Entry("numeric not lexical", "1.9.0", "1.10.0", -1),
	Entry("missing parts are zero", "1.2", "1.2.0", 0),
	Entry("newer", "2.0.0", "1.99.9", 1),
	Entry("prerelease suffix ignored", "1.3.0-rc1", "1.3.0", 0),
	Entry("development build is older", "VERSION_PLACEHOLDER", "0.1.0", -1),
)
