package tokenlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const DefaultFilePerm = 0o644

func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, &IOError{Op: "parse", Path: path, Err: err}
	}
	return doc, nil
}

// Save encodes doc and replaces path with it in one rename, so readers see
// either the old or the new list and never a partial write.
func Save(path string, doc *Document) error {
	data := doc.Encode()

	perm := os.FileMode(DefaultFilePerm)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "stat", Path: path, Err: err}
	}

	if err := atomicWriteFile(path, data, perm); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
