package phonetic_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/internal/answer"
	"github.com/markgrovs/anki-spanish/internal/phonetic"
	"github.com/markgrovs/anki-spanish/pkg/logger"
)

type fakeWiki struct {
	pages map[string]string
	calls int
}

func (f *fakeWiki) Spanish(ctx context.Context, lang, page string) (string, error) {
	f.calls++
	return f.pages[lang+":"+page], nil
}

type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.out), f.err
}

var _ = Describe("Chain", func() {
	var (
		ctx    context.Context
		log    *logger.Logger
		wiki   *fakeWiki
		runner *fakeRunner
		cfg    phonetic.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		log = logger.New(logger.WithOutput(GinkgoWriter))
		wiki = &fakeWiki{pages: map[string]string{
			"es:perro": "{{pron-graf|fone=ˈpe.ro}}",
			"en:gato":  "===Pronunciation===\nIt rhymes, /ˈɡa.to/ roughly.",
		}}
		runner = &fakeRunner{out: "pˈero\n"}
		cfg = phonetic.Config{
			Wiki: wiki, Languages: []string{"es", "en"}, UseWiki: true,
			Runner: runner, EspeakCommand: "espeak-ng", EspeakVoice: "es", UseEspeak: true,
			UseRules: true,
		}
	})

	It("uses the wiki first and stops there", func() {
		chain := phonetic.NewChain(log, cfg)
		ans, src := chain.Resolve(ctx, answer.Query{Word: "perro"})
		Expect(ans.Value).To(Equal("/ˈpe.ro/"))
		Expect(src).To(Equal("wiktionary-ipa"))
		Expect(runner.calls).To(BeEmpty())
		Expect(chain.Calls()).To(Equal(map[string]int{"wiktionary-ipa": 1}))
	})

	It("accepts loose transcriptions from the English wiki", func() {
		ans, _ := phonetic.NewChain(log, cfg).Resolve(ctx, answer.Query{Word: "gato"})
		Expect(ans.Value).To(Equal("/ˈɡa.to/"))
	})

	It("falls back to espeak with the expected arguments", func() {
		ans, src := phonetic.NewChain(log, cfg).Resolve(ctx, answer.Query{Word: "mesa"})
		Expect(src).To(Equal("espeak"))
		Expect(ans.Value).To(Equal("/pˈero/"))
		Expect(runner.calls).To(Equal([][]string{{"espeak-ng", "-q", "--ipa", "-v", "es", "mesa"}}))
	})

	It("never takes the transcription of an accentless homograph", func() {
		wiki.pages["es:papá"] = "=== Etimología ===\nDe papa."
		wiki.pages["es:papa"] = "{{pron-graf|fone=ˈpa.pa}}"
		cfg.UseEspeak = false

		ans, src := phonetic.NewChain(log, cfg).Resolve(ctx, answer.Query{Word: "papá"})
		Expect(src).To(Equal("rules"))
		Expect(ans.Value).To(Equal("/paˈpa/"))
	})

	It("falls back to the rules when espeak fails", func() {
		runner.err = errors.New("not installed")
		ans, src := phonetic.NewChain(log, cfg).Resolve(ctx, answer.Query{Word: "mesa"})
		Expect(src).To(Equal("rules"))
		Expect(ans.Value).To(Equal("/ˈme.sa/"))
	})

	It("skips disabled backends entirely", func() {
		cfg.UseWiki = false
		cfg.UseEspeak = false
		chain := phonetic.NewChain(log, cfg)
		ans, src := chain.Resolve(ctx, answer.Query{Word: "perro"})
		Expect(src).To(Equal("rules"))
		Expect(ans.Value).To(Equal("/ˈpe.ro/"))
		Expect(wiki.calls).To(BeZero())
		Expect(runner.calls).To(BeEmpty())
	})
})
