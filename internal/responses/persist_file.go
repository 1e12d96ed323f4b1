package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilePersister keeps the document as one JSON file, replaced atomically.
type FilePersister struct {
	path string
}

func NewFilePersister(path string) *FilePersister {
	if strings.TrimSpace(path) == "" {
		panic("responses: file persister path cannot be empty")
	}
	return &FilePersister{path: filepath.Clean(path)}
}

func (p *FilePersister) Load(ctx context.Context) (Document, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("responses: read %s: %w", p.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("responses: decode %s: %w", p.path, err)
	}
	return doc, nil
}

func (p *FilePersister) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("responses: encode document: %w", err)
	}
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("responses: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("responses: create temp for %s: %w", p.path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("responses: write temp for %s: %w", p.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("responses: close temp for %s: %w", p.path, err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("responses: rename temp for %s: %w", p.path, err)
	}
	return nil
}

var _ Persister = (*FilePersister)(nil)
