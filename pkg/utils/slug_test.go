package utils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/pkg/utils"
)

var _ = Describe("Slugify", func() {
	DescribeTable("normalizes display text",
		func(input, expected string) {
			Expect(utils.Slugify(input)).To(Equal(expected))
		},
		Entry("plain word", "perro", "perro"),
		Entry("accents and case", "Árbol", "arbol"),
		Entry("eñe loses its tilde", "año", "ano"),
		Entry("article and word", "el agua", "el_agua"),
		Entry("whitespace runs", "  la   casa  ", "la_casa"),
		Entry("punctuation becomes underscore", "¿qué?", "_que_"),
		Entry("hyphen kept", "medio-día", "medio-dia"),
		Entry("empty input", "", ""),
		Entry("punctuation only", "¡!?.,", ""),
		Entry("whitespace only", "   ", ""),
	)

	It("is idempotent", func() {
		inputs := []string{"Él come pan.", "  Niño  pequeño ", "¿Dónde está?", "agua-fría", "x"}
		for _, in := range inputs {
			once := utils.Slugify(in)
			Expect(utils.Slugify(once)).To(Equal(once), "input %q", in)
		}
	})

	It("treats empty keys as invalid", func() {
		Expect(utils.ValidKey(utils.Slugify("..."))).To(BeFalse())
		Expect(utils.ValidKey(utils.Slugify("gato"))).To(BeTrue())
	})
})

var _ = Describe("StripAccents", func() {
	It("removes combining marks and keeps base letters", func() {
		Expect(utils.StripAccents("águila")).To(Equal("aguila"))
		Expect(utils.StripAccents("pingüino")).To(Equal("pinguino"))
	})
})
