package enrich_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/internal/answer"
	"github.com/markgrovs/anki-spanish/internal/config"
	"github.com/markgrovs/anki-spanish/internal/enrich"
	"github.com/markgrovs/anki-spanish/internal/grammar"
	"github.com/markgrovs/anki-spanish/internal/phonetic"
	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/models"
)

type silent struct{ calls int }

func (s *silent) Resolve(ctx context.Context, q answer.Query) (answer.Answer, string) {
	s.calls++
	return answer.None, ""
}

var _ = Describe("Enricher", func() {
	var (
		ctx    context.Context
		log    *logger.Logger
		ipa    *answer.Chain
		gender *answer.Chain
		pos    *answer.Chain
	)

	BeforeEach(func() {
		ctx = context.Background()
		log = logger.New(logger.WithOutput(GinkgoWriter))
		ipa = phonetic.NewChain(log, phonetic.Config{UseRules: true})
		gender = grammar.NewGenderChain(log, grammar.ChainConfig{})
		pos = grammar.NewPOSChain(log, grammar.ChainConfig{GuessVerbs: true})
	})

	It("fills gender and transcription for a plain noun", func() {
		rec := &models.Record{Spanish: "perro", English: "dog", POS: "noun"}
		e := enrich.New(log, config.Options{}, ipa, gender, pos)

		res := e.Enrich(ctx, rec)
		Expect(res.Gender).To(BeTrue())
		Expect(res.IPA).To(BeTrue())
		Expect(rec.Gender).To(Equal("m"))
		Expect(rec.IPA).To(Equal("/ˈpe.ro/"))
		Expect(rec.Dirty).To(BeTrue())
		Expect(grammar.Article(rec.Spanish, rec.GrammaticalGender(), rec.PartOfSpeech())).To(Equal("el"))
		Expect(e.Counts()).To(Equal(enrich.Counts{Gender: 1, IPA: 1}))
	})

	It("honours the exception table", func() {
		e := enrich.New(log, config.Options{}, ipa, gender, pos)
		mano := &models.Record{Spanish: "mano", POS: "noun"}
		dia := &models.Record{Spanish: "día", POS: "noun"}
		e.Enrich(ctx, mano)
		e.Enrich(ctx, dia)
		Expect(mano.Gender).To(Equal("f"))
		Expect(dia.Gender).To(Equal("m"))
	})

	It("only genders nouns", func() {
		e := enrich.New(log, config.Options{}, ipa, gender, pos)
		rec := &models.Record{Spanish: "rojo", POS: "adj"}
		e.Enrich(ctx, rec)
		Expect(rec.Gender).To(BeEmpty())

		verbish := &models.Record{Spanish: "amanecer", POS: "noun"}
		e.Enrich(ctx, verbish)
		Expect(verbish.Gender).To(BeEmpty())
	})

	It("keeps existing values unless forced", func() {
		rec := &models.Record{Spanish: "casa", POS: "noun", Gender: "m", IPA: "/x/"}
		e := enrich.New(log, config.Options{}, ipa, gender, pos)
		res := e.Enrich(ctx, rec)
		Expect(res.Changed()).To(BeFalse())
		Expect(rec.Dirty).To(BeFalse())

		forced := enrich.New(log, config.Options{ForceGender: true, ForceTranscription: true}, ipa, gender, pos)
		res = forced.Enrich(ctx, rec)
		Expect(res.Gender).To(BeTrue())
		Expect(rec.Gender).To(Equal("f"))
		Expect(rec.IPA).To(Equal("/ˈka.sa/"))
	})

	It("leaves fields untouched when no source answers", func() {
		none := &silent{}
		rec := &models.Record{Spanish: "luz", POS: "noun"}
		e := enrich.New(log, config.Options{}, none, none, nil)
		res := e.Enrich(ctx, rec)
		Expect(res.Changed()).To(BeFalse())
		Expect(rec.Gender).To(BeEmpty())
		Expect(rec.IPA).To(BeEmpty())
		Expect(none.calls).To(Equal(2))
	})

	It("fills part of speech first when enabled", func() {
		rec := &models.Record{Spanish: "cantar"}
		off := enrich.New(log, config.Options{}, ipa, gender, pos)
		off.Enrich(ctx, rec)
		Expect(rec.POS).To(BeEmpty())

		on := enrich.New(log, config.Options{EnrichPOS: true}, ipa, gender, pos)
		res := on.Enrich(ctx, rec)
		Expect(res.POS).To(BeTrue())
		Expect(rec.POS).To(Equal("verb"))
		Expect(rec.Gender).To(BeEmpty())
	})

	It("ignores blank records", func() {
		rec := &models.Record{English: "dog"}
		res := enrich.New(log, config.Options{}, ipa, gender, pos).Enrich(ctx, rec)
		Expect(res.Changed()).To(BeFalse())
	})

	It("enriches a whole store and stops when cancelled", func() {
		records := []*models.Record{{Spanish: "perro", POS: "noun"}, {English: "blank"}, {Spanish: "gato", POS: "noun", Gender: "m", IPA: "/ˈɡa.to/"}}
		e := enrich.New(log, config.Options{}, ipa, gender, pos)
		changed, err := e.EnrichAll(ctx, records)
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(Equal(1))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = e.EnrichAll(cctx, records)
		Expect(err).To(MatchError(context.Canceled))
	})
})
