package index

import (
	"fmt"

	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/storage"
)

// Expect describes the corpus and model a snapshot must match to be reused.
type Expect struct {
	Fingerprint core.ID
	Model       string
}

// Save writes the index to two artifacts: vectors to indexPath and documents
// to dataPath.
func (v *VectorIndex) Save(indexPath, dataPath string) error {
	err := storage.SaveSnapshot(indexPath, dataPath,
		&storage.IndexArtifact{
			Fingerprint: v.fingerprint,
			Model:       v.model,
			Dimension:   v.dimension,
			Vectors:     v.vectors,
		},
		&storage.DataArtifact{
			Fingerprint: v.fingerprint,
			Documents:   v.docs,
		},
	)
	if err != nil {
		return err
	}
	v.logger.Info("saved index snapshot", "documents", len(v.docs), "index", indexPath, "data", dataPath)
	return nil
}

// Load restores an index saved with Save. Any problem with the artifacts,
// including a fingerprint or model that differs from expect, is reported as
// ErrSnapshotInvalid. Missing artifacts also match storage.ErrNotFound.
func Load(indexPath, dataPath string, embedder ai.Embedder, expect Expect, opts ...Option) (*VectorIndex, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	idx, data, err := storage.LoadSnapshot(indexPath, dataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotInvalid, err)
	}

	switch {
	case idx.Fingerprint != data.Fingerprint:
		return nil, invalid("artifacts belong to different builds")
	case core.Fingerprint(data.Documents) != data.Fingerprint:
		return nil, invalid("document artifact fingerprint does not match its contents")
	case data.Fingerprint != expect.Fingerprint:
		return nil, invalid("corpus has changed since the snapshot was written")
	case idx.Model != expect.Model:
		return nil, invalid("snapshot model %q, configured model %q", idx.Model, expect.Model)
	case len(idx.Vectors) != len(data.Documents):
		return nil, invalid("%d vectors for %d documents", len(idx.Vectors), len(data.Documents))
	}

	v, err := NewVectorIndex(embedder, idx.Model, data.Documents, idx.Vectors, opts...)
	if err != nil {
		return nil, invalid("%v", err)
	}
	if v.dimension != idx.Dimension {
		return nil, invalid("dimension %d recorded, %d stored", idx.Dimension, v.dimension)
	}
	return v, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSnapshotInvalid, fmt.Sprintf(format, args...))
}
