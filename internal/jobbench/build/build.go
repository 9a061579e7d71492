package build

// Build information, set at link time with -ldflags "-X".
var (
	ReleaseVersion = "UNKNOWN_RELEASE_VERSION"
	GitCommit      = "UNKNOWN_GITCOMMIT"
	BuildTime      = "UNKNOWN_BUILDTIME"
	GoVersion      = "UNKNOWN_GOVERSION"
)
