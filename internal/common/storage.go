package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileStore saves uploaded files under a base directory, grouped by
// upload date. It returns the path relative to the base directory so
// callers can persist a stable reference.
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (fs *FileStore) Save(src io.Reader, ext string) (string, error) {
	now := time.Now()

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	rel := filepath.Join(
		"posts",
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()),
		hex.EncodeToString(randomBytes)+ext,
	)

	abs := filepath.Join(fs.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		os.Remove(abs)
		return "", err
	}

	return rel, nil
}

func (fs *FileStore) Remove(rel string) error {
	err := os.Remove(filepath.Join(fs.baseDir, rel))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
