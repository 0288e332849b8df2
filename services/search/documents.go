package search

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/meghashyamc/buscador/services/occurrence"
)

type documentFile struct {
	Path string
	Name string
}

// listDocuments returns the regular files directly inside dir, sorted by name.
// Symlinks are followed; subdirectories and other non-file entries are skipped.
func listDocuments(dir string) ([]documentFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var documents []documentFile
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		documents = append(documents, documentFile{Path: path, Name: entry.Name()})
	}
	return documents, nil
}

func (d documentFile) nameContains(term string) bool {
	return occurrence.Contains(d.Name, term)
}

func (d documentFile) extension() string {
	return strings.ToLower(filepath.Ext(d.Name))
}
