package pipeline

import (
	"fmt"
	"strings"

	"github.com/markgrovs/anki-spanish/pkg/models"
)

// ImageHTML shows image, with badge overlaid in the top right corner when
// one is given.
func ImageHTML(image, badge string) string {
	if badge == "" {
		return fmt.Sprintf(`<img src="%s">`, image)
	}
	return `<div style="position:relative; display:inline-block;">` +
		fmt.Sprintf(`<img src="%s">`, image) +
		fmt.Sprintf(`<img src="%s" style="position:absolute; top:6px; right:6px; width:56px; height:56px; opacity:0.9;">`, badge) +
		`</div>`
}

func SoundTag(filename string) string {
	return "[sound:" + filename + "]"
}

// NotesText summarizes a record on one line, leaving out empty parts.
func NotesText(rec *models.Record) string {
	var bits []string
	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			bits = append(bits, label+": "+value)
		}
	}
	add("EN", rec.English)
	add("Sense", rec.Sense)
	add("POS", posText(rec))
	add("Gender", genderText(rec))
	add("IPA", rec.Transcription())
	return strings.Join(bits, " • ")
}

// Tags returns base followed by gender and part of speech tags.
func Tags(base []string, rec *models.Record) []string {
	tags := append([]string(nil), base...)
	if g := genderText(rec); g != "" {
		tags = append(tags, "gender:"+g)
	}
	if p := posText(rec); p != "" {
		tags = append(tags, "pos:"+strings.ReplaceAll(p, " ", "_"))
	}
	return tags
}

func posText(rec *models.Record) string {
	return strings.ToLower(strings.TrimSpace(rec.POS))
}

func genderText(rec *models.Record) string {
	return strings.ToLower(strings.TrimSpace(rec.Gender))
}
