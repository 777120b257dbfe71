// Package version reports the build of the running endpointkit binary.
//
// Values are stamped at link time and fall back to the module build info:
//
//	go build -ldflags "-X github.com/kbukum/endpointkit/version.Version=1.4.0 \
//	  -X github.com/kbukum/endpointkit/version.GitCommit=$(git rev-parse --short HEAD)"
package version
