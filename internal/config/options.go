package config

// Options are the per-run switches of the build pipeline. They are built once
// from flags and passed by value; nothing reads them from global state.
type Options struct {
	OnlyMissing        bool
	Limit              int
	ForceTranscription bool
	ForceGender        bool
	ForcePOS           bool
	ForceAudio         bool
	EnrichPOS          bool
	OpenImageSearch    bool
	SaveEachRecord     bool
	// DryRun reads Anki but never writes to it, synthesizes no audio and
	// leaves the store untouched.
	DryRun bool
}

// Forced reports whether any recompute flag makes a complete row worth
// processing again.
func (o Options) Forced() bool {
	return o.ForceTranscription || o.ForceGender || o.ForcePOS
}
