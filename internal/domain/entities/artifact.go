// Package entities defines core domain models and data structures.
package entities

// ArtifactSpec describes the single (url, expected-digest) pair a pipeline
// invocation is responsible for
type ArtifactSpec struct {
	SourceURL      string
	ExpectedSHA256 string // hex digest; empty means "trust the local build"
}

// CachePaths names the two well-known filesystem locations for one artifact
type CachePaths struct {
	FinalPath   string // durable location, only ever holds verified bytes
	StagingPath string // scratch location for an in-flight download
}

// DownloadOutcome is the transient result of one fetch attempt
type DownloadOutcome struct {
	SHA256       string
	BytesWritten int64
}

// Artifact represents a fetched archive ready for extraction
type Artifact struct {
	Name     string
	Version  string
	Platform string
	Path     string
}
