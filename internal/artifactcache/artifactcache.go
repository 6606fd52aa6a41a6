// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

// Package artifactcache implements a content-addressed cache for downloaded
// artifacts (bootstrap scripts, pinned requirements sets, and the like).
//
// Layout under the cache root:
//
//	files/xx/yy/<digest>          - individual files, named by SHA256 digest
//	entries/xx/yy/<key digest>/   - one directory per cached artifact
//	    key                       - the canonicalized key text
//	    metadata.json             - type marker; written last, marks validity
//	    content/                  - hard links into files/
package artifactcache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/pocketsignal/toolkit/internal/file"
	"github.com/pocketsignal/toolkit/internal/filelock"
	"github.com/pocketsignal/toolkit/internal/logger"
)

const (
	metadataFilename = "metadata.json"
	keyFilename      = "key"
	contentDirName   = "content"
)

// Cache is a handle to an artifact cache rooted at a directory.
type Cache struct {
	rootDir string
}

// Entry describes one cached artifact.
type Entry struct {
	// ContentPath is the directory holding the artifact's files.
	ContentPath string
}

type entryMetadata struct {
	Type string `json:"type"`
}

// Open returns a handle to the cache rooted at rootDir. The directory does
// not need to exist yet.
func Open(rootDir string) (*Cache, error) {
	return &Cache{rootDir: rootDir}, nil
}

// RootDir returns the cache's root directory.
func (c *Cache) RootDir() string {
	return c.rootDir
}

// Close releases the cache handle.
func (*Cache) Close() error {
	return nil
}

// Lookup finds a previously cached artifact with the given type and JSON
// key. It returns nil without error on a cache miss.
func (c *Cache) Lookup(artifactType, jsonKey string) (*Entry, error) {
	canonicalKey, err := canonicalizeKey(artifactType, jsonKey)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize artifact key\n%w", err)
	}

	entryDir := c.entryDirForDigest(sha256Hex([]byte(canonicalKey)))

	metadataPath := filepath.Join(entryDir, metadataFilename)
	metadataBytes, err := os.ReadFile(metadataPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read artifact metadata from '%s'\n%w", metadataPath, err)
	}

	var metadata entryMetadata
	err = json.Unmarshal(metadataBytes, &metadata)
	if err != nil {
		// Treat unparsable metadata as a miss; the caller can re-cache.
		logger.Log.Warnf("Ignoring artifact cache entry with invalid metadata at '%s': %v", metadataPath, err)
		return nil, nil
	}

	if metadata.Type == "" {
		return nil, errors.New("artifact metadata is missing the artifact type")
	} else if metadata.Type != artifactType {
		return nil, fmt.Errorf("artifact metadata has type '%s' but expected '%s'", metadata.Type, artifactType)
	}

	contentDir := filepath.Join(entryDir, contentDirName)
	contentStat, err := os.Stat(contentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat artifact content dir '%s'\n%w", contentDir, err)
	} else if !contentStat.IsDir() {
		return nil, errors.New("artifact content is not a directory")
	}

	return &Entry{ContentPath: contentDir}, nil
}

// Put caches the file or directory tree at artifactPath under the given type
// and JSON key, replacing any existing entry for that key.
func (c *Cache) Put(artifactType, jsonKey, artifactPath string) (*Entry, error) {
	if artifactType == "" {
		return nil, errors.New("cannot cache an artifact with an empty type")
	} else if jsonKey == "" {
		return nil, errors.New("cannot cache an artifact with an empty key")
	}

	if _, err := os.Stat(artifactPath); err != nil {
		return nil, fmt.Errorf("failed to stat input path '%s'\n%w", artifactPath, err)
	}

	logger.Log.Debugf("Caching artifact: %s(%s) => '%s'", artifactType, jsonKey, artifactPath)

	canonicalKey, err := canonicalizeKey(artifactType, jsonKey)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize artifact key\n%w", err)
	}

	entryDir := c.entryDirForDigest(sha256Hex([]byte(canonicalKey)))

	err = os.MkdirAll(entryDir, os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact entry directory '%s'\n%w", entryDir, err)
	}

	// Take an exclusive lock on the entry directory while replacing its
	// contents; concurrent tools may be caching the same artifact.
	lock, err := filelock.NewLock(entryDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock on '%s'\n%w", entryDir, err)
	}

	defer lock.Close()

	err = lock.LockExclusive()
	if err != nil {
		return nil, fmt.Errorf("failed to lock artifact entry at '%s'\n%w", entryDir, err)
	}

	// Any existing contents may be a partial import; wipe and start over.
	err = removeDirContents(entryDir)
	if err != nil {
		return nil, fmt.Errorf("failed to clear artifact entry at '%s'\n%w", entryDir, err)
	}

	contentDir := filepath.Join(entryDir, contentDirName)
	err = os.MkdirAll(contentDir, os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact content directory '%s'\n%w", contentDir, err)
	}

	err = c.importContent(artifactPath, contentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to import artifact content\n%w", err)
	}

	// The key may contain text unsafe to embed in metadata; store it on its own.
	err = os.WriteFile(filepath.Join(entryDir, keyFilename), []byte(canonicalKey), os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to write artifact key\n%w", err)
	}

	// Written last; its presence marks the entry as valid.
	metadataBytes, err := json.Marshal(entryMetadata{Type: artifactType})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize artifact metadata\n%w", err)
	}

	err = os.WriteFile(filepath.Join(entryDir, metadataFilename), metadataBytes, os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to write artifact metadata\n%w", err)
	}

	return &Entry{ContentPath: contentDir}, nil
}

// LookupFileBySHA256Digest finds a cached file by its content digest,
// returning an empty path on a miss.
func (c *Cache) LookupFileBySHA256Digest(digest string) (string, error) {
	if len(digest) != 64 {
		return "", errors.New("invalid SHA256 digest")
	}

	filePath := c.fileForDigest(digest)

	fileInfo, err := os.Stat(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", err
	} else if fileInfo.IsDir() {
		return "", errors.New("cached file path is a directory")
	}

	return filePath, nil
}

// VisitorFunc is invoked once per entry (or per enumeration error) during
// Visit. Returning an error stops the walk.
type VisitorFunc func(entryDir string, entry *Entry, err error) error

// Visit enumerates all cache entries, valid or not. Entries whose metadata
// is missing or invalid are reported with a nil Entry.
func (c *Cache) Visit(fn VisitorFunc) error {
	entriesDir := filepath.Join(c.rootDir, "entries")

	matches, err := filepath.Glob(filepath.Join(entriesDir, "??", "??", "*"))
	if err != nil {
		return fmt.Errorf("failed to enumerate artifact cache entries under '%s'\n%w", entriesDir, err)
	}

	for _, entryDir := range matches {
		metadataBytes, err := os.ReadFile(filepath.Join(entryDir, metadataFilename))
		if err != nil {
			if visitErr := fn(entryDir, nil, nil); visitErr != nil {
				return visitErr
			}
			continue
		}

		var metadata entryMetadata
		err = json.Unmarshal(metadataBytes, &metadata)
		if err != nil || metadata.Type == "" {
			if visitErr := fn(entryDir, nil, nil); visitErr != nil {
				return visitErr
			}
			continue
		}

		entry := &Entry{ContentPath: filepath.Join(entryDir, contentDirName)}
		if visitErr := fn(entryDir, entry, nil); visitErr != nil {
			return visitErr
		}
	}

	return nil
}

// RemoveEntry deletes the entry rooted at entryDir. entryDir must have been
// produced by Visit.
func (c *Cache) RemoveEntry(entryDir string) error {
	entriesDir := filepath.Join(c.rootDir, "entries")

	relPath, err := filepath.Rel(entriesDir, entryDir)
	if err != nil || relPath == "." || strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return fmt.Errorf("refusing to remove '%s': not an artifact cache entry", entryDir)
	}

	return os.RemoveAll(entryDir)
}

func (c *Cache) importContent(artifactPath, contentDir string) error {
	return filepath.Walk(artifactPath, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relativePath, err := filepath.Rel(artifactPath, filePath)
		if err != nil {
			return err
		}

		if relativePath == "." {
			if info.IsDir() {
				return nil
			}

			// A single-file artifact lands directly in the content dir.
			relativePath = filepath.Base(filePath)
		}

		destPath := filepath.Join(contentDir, relativePath)

		if info.IsDir() {
			return os.MkdirAll(destPath, os.ModePerm)
		} else if !info.Mode().IsRegular() {
			return fmt.Errorf("unsupported file type for '%s'", filePath)
		}

		cachedFilePath, err := c.getOrAddFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to add '%s' to the file store\n%w", filePath, err)
		}

		err = os.Link(cachedFilePath, destPath)
		if err != nil {
			return fmt.Errorf("failed to hard link '%s' => '%s'\n%w", destPath, cachedFilePath, err)
		}

		return nil
	})
}

// getOrAddFile returns the path of the stored copy of filePath, adding it to
// the file store if it is not already present.
func (c *Cache) getOrAddFile(filePath string) (string, error) {
	digest, err := file.GenerateSHA256(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to compute SHA256 of '%s'\n%w", filePath, err)
	}

	storedPath := c.fileForDigest(digest)

	_, err = os.Stat(storedPath)
	if err == nil {
		return storedPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	containingDir := filepath.Dir(storedPath)
	err = os.MkdirAll(containingDir, os.ModePerm)
	if err != nil {
		return "", err
	}

	// Copy into a temp file in the destination dir, then rename; the rename
	// is atomic so readers never observe a partial file.
	tempFile, err := os.CreateTemp(containingDir, "import-")
	if err != nil {
		return "", err
	}

	defer os.Remove(tempFile.Name())

	sourceFile, err := os.Open(filePath)
	if err != nil {
		return "", err
	}

	defer sourceFile.Close()

	_, err = io.Copy(tempFile, sourceFile)
	if err != nil {
		return "", err
	}

	err = tempFile.Close()
	if err != nil {
		return "", err
	}

	err = os.Rename(tempFile.Name(), storedPath)
	if err != nil {
		return "", err
	}

	return storedPath, nil
}

func (c *Cache) fileForDigest(digest string) string {
	return filepath.Join(c.rootDir, "files", digest[0:2], digest[2:4], digest[4:])
}

func (c *Cache) entryDirForDigest(digest string) string {
	return filepath.Join(c.rootDir, "entries", digest[0:2], digest[2:4], digest[4:])
}

func canonicalizeKey(artifactType, jsonKey string) (string, error) {
	taggedKey := fmt.Sprintf("{\"Type\":%q, \"Key\":%s}", artifactType, jsonKey)
	canonicalKey, err := jsoncanonicalizer.Transform([]byte(taggedKey))
	if err != nil {
		return "", err
	}

	return string(canonicalKey), nil
}

func sha256Hex(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// removeDirContents removes everything under path without removing path
// itself, continuing past individual failures.
func removeDirContents(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}

	err = nil
	for _, entry := range entries {
		currentErr := os.RemoveAll(filepath.Join(path, entry.Name()))
		if currentErr != nil && err == nil {
			err = currentErr
		}
	}

	return err
}
