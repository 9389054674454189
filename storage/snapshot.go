package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Default artifact file names.
const (
	IndexFileName = "index.bin"
	DataFileName  = "data.bin"
)

// SaveSnapshot writes both artifacts, creating parent directories if needed.
// Each file is written to a temporary name and renamed into place so a crash
// never leaves a half-written artifact behind.
func SaveSnapshot(indexPath, dataPath string, index *IndexArtifact, data *DataArtifact) error {
	if err := writeAtomic(dataPath, MarshalDataArtifact(data)); err != nil {
		return err
	}
	return writeAtomic(indexPath, MarshalIndexArtifact(index))
}

// LoadSnapshot reads both artifacts. It returns ErrNotFound when either file
// is missing.
func LoadSnapshot(indexPath, dataPath string) (*IndexArtifact, *DataArtifact, error) {
	indexBytes, err := readArtifact(indexPath)
	if err != nil {
		return nil, nil, err
	}
	dataBytes, err := readArtifact(dataPath)
	if err != nil {
		return nil, nil, err
	}
	index, err := UnmarshalIndexArtifact(indexBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(indexPath), err)
	}
	data, err := UnmarshalDataArtifact(dataBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(dataPath), err)
	}
	return index, data, nil
}

func readArtifact(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotFound)
	}
	return b, err
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
