package version

var (
	// Set at build time with -ldflags "-X ...".
	Version   = "dev"
	CommitSHA = "unknown"
)

func GetVersionInfo() string {
	return "ankiforge " + Version
}

func GetDetailedVersionInfo() string {
	return "ankiforge\n" +
		"Version:  " + Version + "\n" +
		"Commit:   " + CommitSHA + "\n"
}
