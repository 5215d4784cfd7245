// Package cmd holds the projgen build stamp. Release builds set the
// variables with
//
//	go build -ldflags "-X github.com/thoreinstein/projgen/cmd.Version=v1.2.3 \
//	  -X github.com/thoreinstein/projgen/cmd.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/thoreinstein/projgen/cmd.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/projgen
package cmd

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Stamp identifies the build in backup manifests: the version, plus the
// commit when one was stamped in.
func Stamp() string {
	if Commit == "" || Commit == "none" {
		return Version
	}
	return Version + "+" + Commit
}
