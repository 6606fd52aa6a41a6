// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

// Package downloadcache layers a URI-keyed view over the artifact cache for
// files fetched over the network.
package downloadcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pocketsignal/toolkit/internal/artifactcache"
)

const downloadArtifactType = "download"

// DownloadCache caches downloaded files, keyed by their source URI.
type DownloadCache struct {
	artifactCache *artifactcache.Cache
}

type downloadKey struct {
	Uri string `json:"uri"`
}

// DownloadCacheEntry points at a cached downloaded file.
type DownloadCacheEntry struct {
	Path string
}

// Open wraps the given artifact cache in a download-typed view.
func Open(artifactCache *artifactcache.Cache) (*DownloadCache, error) {
	return &DownloadCache{artifactCache: artifactCache}, nil
}

// LookupByUri finds a previously cached download of uri, returning nil
// without error on a miss.
func (dc *DownloadCache) LookupByUri(uri string) (*DownloadCacheEntry, error) {
	jsonKey, err := json.Marshal(downloadKey{Uri: uri})
	if err != nil {
		return nil, err
	}

	cacheEntry, err := dc.artifactCache.Lookup(downloadArtifactType, string(jsonKey))
	if err != nil {
		return nil, err
	} else if cacheEntry == nil {
		return nil, nil
	}

	// A download entry holds exactly one file.
	contentDirEntries, err := os.ReadDir(cacheEntry.ContentPath)
	if err != nil {
		return nil, err
	}

	if len(contentDirEntries) != 1 || contentDirEntries[0].IsDir() {
		return nil, fmt.Errorf("expected exactly one file in download entry content directory '%s'", cacheEntry.ContentPath)
	}

	return &DownloadCacheEntry{
		Path: filepath.Join(cacheEntry.ContentPath, contentDirEntries[0].Name()),
	}, nil
}

// LookupBySHA256Digest finds a cached download by its content digest,
// returning nil without error on a miss.
func (dc *DownloadCache) LookupBySHA256Digest(sha256Digest string) (*DownloadCacheEntry, error) {
	filePath, err := dc.artifactCache.LookupFileBySHA256Digest(sha256Digest)
	if err != nil {
		return nil, err
	} else if filePath == "" {
		return nil, nil
	}

	return &DownloadCacheEntry{Path: filePath}, nil
}

// CacheDownload records downloadedFile as the cached copy of uri.
func (dc *DownloadCache) CacheDownload(uri, downloadedFile string) (*DownloadCacheEntry, error) {
	jsonKey, err := json.Marshal(downloadKey{Uri: uri})
	if err != nil {
		return nil, err
	}

	cacheEntry, err := dc.artifactCache.Put(downloadArtifactType, string(jsonKey), downloadedFile)
	if err != nil {
		return nil, err
	}

	return &DownloadCacheEntry{
		Path: filepath.Join(cacheEntry.ContentPath, filepath.Base(downloadedFile)),
	}, nil
}
