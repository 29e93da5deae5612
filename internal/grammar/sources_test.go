package grammar_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/internal/answer"
	"github.com/markgrovs/anki-spanish/internal/grammar"
	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/models"
)

type fakeWiki struct {
	pages map[string]string
	err   error
	calls int
}

func (f *fakeWiki) Spanish(ctx context.Context, lang, page string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.pages[lang+":"+page], nil
}

func query(word, sense string) answer.Query {
	return answer.Query{Word: word, Head: grammar.HeadWord(word), Sense: sense}
}

var _ = Describe("Gender chain", func() {
	var (
		ctx  context.Context
		log  *logger.Logger
		wiki *fakeWiki
	)

	BeforeEach(func() {
		ctx = context.Background()
		log = logger.New(logger.WithOutput(GinkgoWriter))
		wiki = &fakeWiki{pages: map[string]string{
			"en:mar": "===Noun===\n{{es-noun|m}}\n",
			"es:mar": "=== Etimología ===\n",
		}}
	})

	It("takes the wiki template over the ending rules", func() {
		chain := grammar.NewGenderChain(log, grammar.ChainConfig{Wiki: wiki, Languages: []string{"es", "en"}, UseWiki: true})
		ans, src := chain.Resolve(ctx, query("mar", ""))
		Expect(ans.Value).To(Equal(string(models.GenderMasculine)))
		Expect(src).To(Equal("wiktionary-template"))
	})

	It("falls through to the exception table when the wiki is off", func() {
		chain := grammar.NewGenderChain(log, grammar.ChainConfig{Wiki: wiki, Languages: []string{"es"}, UseWiki: false})
		ans, src := chain.Resolve(ctx, query("mano", ""))
		Expect(ans.Value).To(Equal(string(models.GenderFeminine)))
		Expect(src).To(Equal("exceptions"))
		Expect(wiki.calls).To(BeZero())
		Expect(chain.Calls()).NotTo(HaveKey("suffix"))
	})

	It("treats wiki failures as no answer", func() {
		wiki.err = errors.New("offline")
		chain := grammar.NewGenderChain(log, grammar.ChainConfig{Wiki: wiki, Languages: []string{"es"}, UseWiki: true})
		ans, src := chain.Resolve(ctx, query("casa", ""))
		Expect(ans.Value).To(Equal(string(models.GenderFeminine)))
		Expect(src).To(Equal("suffix"))
	})

	It("never genders infinitive-looking heads from rules", func() {
		chain := grammar.NewGenderChain(log, grammar.ChainConfig{})
		ans, _ := chain.Resolve(ctx, query("cantar", ""))
		Expect(ans.Found).To(BeFalse())
	})
})

var _ = Describe("POS chain", func() {
	var (
		ctx context.Context
		log *logger.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		log = logger.New(logger.WithOutput(GinkgoWriter))
	})

	It("prefers hints", func() {
		chain := grammar.NewPOSChain(log, grammar.ChainConfig{
			Hints: grammar.Hints{"cerca": models.POSAdjective},
		})
		ans, src := chain.Resolve(ctx, query("cerca", "noun"))
		Expect(ans.Value).To(Equal("adj"))
		Expect(src).To(Equal("hints"))
	})

	It("reads wiki headers before the sense column", func() {
		wiki := &fakeWiki{pages: map[string]string{"es:limpio": "=== {{adjetivo|es}} ===\n"}}
		chain := grammar.NewPOSChain(log, grammar.ChainConfig{Wiki: wiki, Languages: []string{"es"}, UseWiki: true})
		ans, src := chain.Resolve(ctx, query("limpio", "noun"))
		Expect(ans.Value).To(Equal("adj"))
		Expect(src).To(Equal("wiktionary-pos"))
	})

	It("guesses verbs only when asked", func() {
		off := grammar.NewPOSChain(log, grammar.ChainConfig{})
		ans, _ := off.Resolve(ctx, query("bailar", ""))
		Expect(ans.Found).To(BeFalse())

		on := grammar.NewPOSChain(log, grammar.ChainConfig{GuessVerbs: true})
		ans, src := on.Resolve(ctx, query("bailar", ""))
		Expect(ans.Value).To(Equal("verb"))
		Expect(src).To(Equal("infinitive"))
	})
})
