package version

var (
	// These values are injected during build - DO NOT MODIFY
	Version   = "VERSION_PLACEHOLDER"
	CommitSHA = "COMMIT_PLACEHOLDER"
)

func GetVersionInfo() string {
	return "ankiflow " + Version
}

func GetDetailedVersionInfo() string {
	return "ankiflow\n" +
		"Version:  " + Version + "\n" +
		"Commit:   " + CommitSHA + "\n"
}

// UserAgent identifies outgoing lookup requests.
func UserAgent() string {
	return "ankiflow/" + Version + " (https://github.com/markgrovs/anki-spanish)"
}
