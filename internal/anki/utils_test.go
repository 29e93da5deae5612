package anki_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/internal/anki"
)

var _ = Describe("Query", func() {
	It("narrows by deck, model and fragment", func() {
		Expect(anki.Query("My Spanish Deck::625", "Picture Word", "perro")).
			To(Equal(`deck:"My Spanish Deck::625" note:"Picture Word" "perro"`))
	})

	It("omits empty parts", func() {
		Expect(anki.Query("", "Cloze", "casa")).To(Equal(`note:"Cloze" "casa"`))
	})

	It("escapes search syntax inside the fragment", func() {
		Expect(anki.SearchEscape(`a_b*c:"d"`)).To(Equal(`a\_b\*c\:\"d\"`))
	})
})
