package reconcile_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/markgrovs/anki-spanish/internal/anki"
	"github.com/markgrovs/anki-spanish/internal/reconcile"
	"github.com/markgrovs/anki-spanish/pkg/logger"
)

// ankiConnect answers like AnkiConnect for a collection holding one
// "perro" note outside the target deck.
type ankiConnect struct {
	mu      sync.Mutex
	actions []string
	queries []string
	updated map[string]string
}

func (a *ankiConnect) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string          `json:"action"`
		Params json.RawMessage `json:"params"`
	}
	Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())

	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, req.Action)

	reply := func(result interface{}, errMsg interface{}) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": result, "error": errMsg})
	}

	switch req.Action {
	case "modelFieldNames":
		reply([]string{"Word", "Image", "Audio", "Notes", "IPA", "Gender", "POS", "Article"}, nil)
	case "findNotes":
		var p struct {
			Query string `json:"query"`
		}
		Expect(json.Unmarshal(req.Params, &p)).To(Succeed())
		a.queries = append(a.queries, p.Query)
		if strings.Contains(p.Query, "deck:") {
			reply([]int64{}, nil)
			return
		}
		reply([]int64{42}, nil)
	case "notesInfo":
		reply([]map[string]interface{}{{
			"noteId":    42,
			"modelName": "Picture Word",
			"tags":      []string{},
			"fields": map[string]interface{}{
				"Word": map[string]interface{}{"value": "perro", "order": 0},
				"IPA":  map[string]interface{}{"value": "", "order": 4},
			},
		}}, nil)
	case "addNote":
		reply(nil, "cannot create note because it is a duplicate")
	case "updateNoteFields":
		var p struct {
			Note struct {
				Fields map[string]string `json:"fields"`
			} `json:"note"`
		}
		Expect(json.Unmarshal(req.Params, &p)).To(Succeed())
		a.updated = p.Note.Fields
		reply(nil, nil)
	case "addTags":
		reply(nil, nil)
	default:
		reply(nil, "unsupported action "+req.Action)
	}
}

var _ = Describe("Reconciler against AnkiConnect", func() {
	It("rescues a note that AnkiConnect reports as a duplicate", func() {
		ctx := context.Background()
		log := logger.New(logger.WithOutput(GinkgoWriter))
		server := &ankiConnect{}
		srv := httptest.NewServer(server)
		DeferCleanup(srv.Close)

		svc := anki.NewService(log, anki.WithURL(srv.URL), anki.WithRetries(1, 0))
		schema, err := reconcile.ResolveSchema(ctx, svc, "Picture Word", reconcile.PictureWordPlan)
		Expect(err).NotTo(HaveOccurred())

		out, err := reconcile.New(svc, schema, log).Upsert(ctx, reconcile.Target{
			Deck:   deck,
			Fields: pictureFields("perro", "/ˈpe.ro/"),
			Tags:   []string{"625:auto"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(reconcile.Updated))

		Expect(server.actions).To(Equal([]string{
			"modelFieldNames",
			"findNotes",
			"addNote",
			"findNotes",
			"findNotes",
			"notesInfo",
			"updateNoteFields",
			"addTags",
		}))
		Expect(server.queries[0]).To(HavePrefix(`deck:"Spanish::625"`))
		Expect(server.queries[2]).To(Equal(`note:"Picture Word" "perro"`))
		Expect(server.updated).To(HaveKeyWithValue("IPA", "/ˈpe.ro/"))
	})
})
