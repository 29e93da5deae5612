package phonetic_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/internal/phonetic"
)

var _ = Describe("Transcribe", func() {
	DescribeTable("spelling to IPA",
		func(word, expected string) {
			Expect(phonetic.Transcribe(word)).To(Equal(expected))
		},
		Entry("trill and penultimate stress", "perro", "ˈpe.ro"),
		Entry("written accent", "canción", "kanˈsjon"),
		Entry("final consonant stress", "hablar", "aˈβlaɾ"),
		Entry("rising diphthong", "ciudad", "sjuˈðað"),
		Entry("gu before a", "agua", "ˈa.ɣwa"),
		Entry("silent u in gui", "guitarra", "ɡiˈta.ra"),
		Entry("hiatus", "día", "ˈdi.a"),
		Entry("ñ", "niño", "ˈni.ɲo"),
		Entry("ll", "llave", "ˈʝa.βe"),
		Entry("qu", "queso", "ˈke.so"),
		Entry("j", "jamón", "xaˈmon"),
		Entry("nasal assimilation", "invierno", "imˈbjeɾ.no"),
		Entry("final y is a vowel", "hoy", "ˈoj"),
		Entry("uppercase", "Casa", "ˈka.sa"),
		Entry("phrase", "la casa", "ˈla ˈka.sa"),
	)

	It("returns nothing without letters", func() {
		Expect(phonetic.Transcribe("¿?")).To(BeEmpty())
	})
})
