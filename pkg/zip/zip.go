package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Artifact is a single file destined for an archive download.
type Artifact struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveArtifacts bundles the given artifacts into an in-memory zip.
func ArchiveArtifacts(artifacts []Artifact) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, artifact := range artifacts {
		w, err := zw.Create(artifact.Filename)
		if err != nil {
			return nil, fmt.Errorf("zip: create entry %q: %w", artifact.Filename, err)
		}
		if _, err := w.Write(artifact.Data); err != nil {
			return nil, fmt.Errorf("zip: write entry %q: %w", artifact.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
