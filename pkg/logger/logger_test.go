package logger_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/pkg/logger"
)

var _ = Describe("Logger", func() {
	var (
		buf *bytes.Buffer
		log *logger.Logger
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		log = logger.New(logger.WithOutput(buf), logger.WithPrefix("[test] "))
	})

	It("writes info lines with the prefix as logger name", func() {
		log.Info("hello %s", "world")
		Expect(buf.String()).To(ContainSubstring("INFO"))
		Expect(buf.String()).To(ContainSubstring("test"))
		Expect(buf.String()).To(ContainSubstring("hello world"))
	})

	It("hides debug lines unless verbose", func() {
		log.Debug("hidden")
		Expect(buf.String()).NotTo(ContainSubstring("hidden"))

		log.SetVerbose(true)
		log.Debug("shown")
		Expect(buf.String()).To(ContainSubstring("shown"))
	})

	It("only traces at trace level", func() {
		log.SetVerbose(true)
		log.Trace("step one")
		Expect(buf.String()).NotTo(ContainSubstring("step one"))

		log.SetLevel(logger.LevelTrace)
		log.Trace("step two")
		Expect(buf.String()).To(ContainSubstring("TRACE: step two"))
	})

	It("shares level settings with child loggers", func() {
		child := log.With("run", "abc")
		log.SetVerbose(true)
		child.Debug("from child")
		Expect(buf.String()).To(ContainSubstring("from child"))
		Expect(buf.String()).To(ContainSubstring("abc"))
	})
})
