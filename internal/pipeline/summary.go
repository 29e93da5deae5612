package pipeline

import (
	"sort"
	"strconv"

	"github.com/markgrovs/anki-spanish/internal/enrich"
	"github.com/markgrovs/anki-spanish/pkg/report"
)

// Reasons a record is skipped before reaching the reconciler.
const (
	SkipBlank    = "blank"
	SkipComplete = "complete"
	SkipNoImage  = "no image"
	SkipDeclined = "declined"
)

type Summary struct {
	Scanned     int
	Processed   int
	Added       int
	Updated     int
	Unchanged   int
	Failed      int
	AudioFailed int
	Skipped     map[string]int
	Enriched    enrich.Counts
	Stopped     bool
}

func newSummary() Summary {
	return Summary{Skipped: map[string]int{}}
}

func (s Summary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// Rows lists the summary as label/count pairs.
func (s Summary) Rows() [][]string {
	rows := [][]string{
		{"Scanned", strconv.Itoa(s.Scanned)},
		{"Processed", strconv.Itoa(s.Processed)},
		{"Added", strconv.Itoa(s.Added)},
		{"Updated", strconv.Itoa(s.Updated)},
		{"Unchanged", strconv.Itoa(s.Unchanged)},
		{"Skipped", strconv.Itoa(s.SkippedTotal())},
	}

	reasons := make([]string, 0, len(s.Skipped))
	for reason := range s.Skipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		rows = append(rows, []string{"  " + reason, strconv.Itoa(s.Skipped[reason])})
	}

	rows = append(rows,
		[]string{"Audio failed", strconv.Itoa(s.AudioFailed)},
		[]string{"Failed", strconv.Itoa(s.Failed)},
		[]string{"Enriched POS", strconv.Itoa(s.Enriched.POS)},
		[]string{"Enriched gender", strconv.Itoa(s.Enriched.Gender)},
		[]string{"Enriched IPA", strconv.Itoa(s.Enriched.IPA)},
	)
	return rows
}

func (s Summary) Table() string {
	return report.Counts(s.Rows())
}
