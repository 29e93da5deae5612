package answer

import (
	"context"
	"sync"

	"github.com/markgrovs/anki-spanish/pkg/logger"
	"github.com/markgrovs/anki-spanish/pkg/models"
)

// Answer is a possibly-absent value produced by a Source.
type Answer struct {
	Value string
	Found bool
}

var None = Answer{}

func Of(value string) Answer {
	return Answer{Value: value, Found: true}
}

// Query carries what a source may look at for one record.
type Query struct {
	Word  string
	Head  string
	POS   models.POS
	Sense string
}

type Source interface {
	Name() string
	Lookup(ctx context.Context, q Query) (Answer, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc struct {
	SourceName string
	Fn         func(ctx context.Context, q Query) (Answer, error)
}

func (f SourceFunc) Name() string {
	return f.SourceName
}

func (f SourceFunc) Lookup(ctx context.Context, q Query) (Answer, error) {
	return f.Fn(ctx, q)
}

type Step struct {
	Source  Source
	Enabled bool
}

func On(src Source) Step {
	return Step{Source: src, Enabled: true}
}

// Chain asks its sources in priority order and stops at the first one that
// answers.
type Chain struct {
	attribute string
	steps     []Step
	logger    *logger.Logger

	mu    sync.Mutex
	calls map[string]int
}

func NewChain(attribute string, log *logger.Logger, steps ...Step) *Chain {
	return &Chain{
		attribute: attribute,
		steps:     steps,
		logger:    log,
		calls:     make(map[string]int),
	}
}

func (c *Chain) Attribute() string {
	return c.attribute
}

// Resolve returns the first found answer and the name of the source that
// produced it. Source errors are logged and count as no answer.
func (c *Chain) Resolve(ctx context.Context, q Query) (Answer, string) {
	for _, step := range c.steps {
		if !step.Enabled || step.Source == nil {
			continue
		}
		if ctx.Err() != nil {
			return None, ""
		}

		name := step.Source.Name()
		c.count(name)

		ans, err := step.Source.Lookup(ctx, q)
		if err != nil {
			c.logger.Debug("%s: source %s failed for %q: %v", c.attribute, name, q.Word, err)
			continue
		}
		if ans.Found {
			c.logger.Trace("%s: %q answered by %s: %q", c.attribute, q.Word, name, ans.Value)
			return ans, name
		}
	}
	return None, ""
}

// Calls returns how many times each source has been asked.
func (c *Chain) Calls() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.calls))
	for k, v := range c.calls {
		out[k] = v
	}
	return out
}

func (c *Chain) count(name string) {
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
}
