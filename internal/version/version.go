package version

// Name is the program name printed by --version.
const Name = "elucidator"

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/elucidator/internal/version.Version=v0.4.0".
var Version = "0.3"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the program name followed by its version.
func String() string {
	return Name + " " + Version
}
