package report_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/pkg/report"
)

var _ = Describe("Table", func() {
	It("renders headers and padded rows", func() {
		out := report.Table([]string{"Name", "Count"}, [][]string{{"Added", "3"}, {"Skipped"}}, []report.Alignment{report.AlignLeft, report.AlignRight})
		Expect(out).To(ContainSubstring("Name"))
		Expect(out).To(ContainSubstring("Added"))
		Expect(out).To(ContainSubstring("Skipped"))
		Expect(out).To(ContainSubstring("3"))
	})

	It("renders nothing without headers", func() {
		Expect(report.Table(nil, [][]string{{"x"}}, nil)).To(BeEmpty())
	})
})

var _ = Describe("IsTerminal", func() {
	It("is false for buffers", func() {
		Expect(report.IsTerminal(&bytes.Buffer{})).To(BeFalse())
	})
})
