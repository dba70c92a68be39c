package autotranslate

import "runtime/debug"

// Name and Version identify the engine in exports and in the User-Agent
// sent to backends.
const (
	Name    = "autotranslate"
	Version = "0.3.0"
)

// Stamped at link time:
//
//	go build -ldflags "-X github.com/ZaguanLabs/autotranslate.GitCommit=$(git rev-parse HEAD)"
var (
	GitCommit string
	BuildDate string
)

// Revision returns the short commit the binary was built from. GitCommit
// wins over the VCS stamp recorded by the go tool; "" means unknown.
func Revision() string {
	rev := GitCommit
	if rev == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					rev = s.Value
				}
			}
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	return rev
}

// UserAgent is the User-Agent header value for backend requests.
func UserAgent() string {
	return Name + "/" + Version
}
