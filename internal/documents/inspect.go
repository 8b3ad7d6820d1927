package documents

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// FileInfo describes a local file chosen for upload
type FileInfo struct {
	Path  string
	Name  string
	Size  int64
	Pages int // 0 when unknown or not a paged format
	Hash  string
}

// pagedExts are the formats go-fitz can open
var pagedExts = map[string]bool{
	".pdf":  true,
	".epub": true,
	".xps":  true,
}

// Describe stats a file, hashes it and, for paged formats, counts pages
func Describe(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if st.IsDir() {
		return FileInfo{}, fmt.Errorf("%s is a directory", path)
	}

	hash, err := computeFileHash(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to compute hash: %w", err)
	}

	info := FileInfo{
		Path: path,
		Name: filepath.Base(path),
		Size: st.Size(),
		Hash: hash,
	}
	if pagedExts[strings.ToLower(filepath.Ext(path))] {
		// Best effort; a broken PDF is still the server's call
		info.Pages, _ = countPages(path)
	}
	return info, nil
}

// countPages opens a document with go-fitz and returns its page count
func countPages(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// computeFileHash calculates the SHA256 hash of a file
func computeFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
