// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

// Package network implements downloads and reachability probes for the
// toolkit.
package network

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pocketsignal/toolkit/internal/downloadcache"
	"github.com/pocketsignal/toolkit/internal/file"
	"github.com/pocketsignal/toolkit/internal/logger"
	"github.com/pocketsignal/toolkit/internal/retry"
)

// JoinURL concatenates baseURL with extraPaths.
func JoinURL(baseURL string, extraPaths ...string) string {
	const urlPathSeparator = "/"

	if len(extraPaths) == 0 {
		return baseURL
	}

	appendToBase := strings.Join(extraPaths, urlPathSeparator)
	return fmt.Sprintf("%s%s%s", strings.TrimSuffix(baseURL, urlPathSeparator), urlPathSeparator, appendToBase)
}

// CacheAwareDownloadFile downloads url into dst, consulting and populating
// cache when one is provided. caCerts and tlsCerts may be nil.
func CacheAwareDownloadFile(url, dst string, cache *downloadcache.DownloadCache, caCerts *x509.CertPool, tlsCerts []tls.Certificate) (err error) {
	os.MkdirAll(filepath.Dir(dst), os.ModePerm)

	if cache != nil {
		var cacheEntry *downloadcache.DownloadCacheEntry
		cacheEntry, err = cache.LookupByUri(url)
		if err != nil {
			logger.Log.Warnf("Failed to look up download cache entry for (%s).\n%s", url, err)
			err = nil
		}

		if cacheEntry != nil {
			err = file.Copy(cacheEntry.Path, dst)
			if err == nil {
				return
			}

			logger.Log.Warnf("Failed to copy cached download (%s) to (%s).\n%s", cacheEntry.Path, dst, err)
			err = nil
		}
	}

	err = DownloadFile(url, dst, caCerts, tlsCerts)
	if err != nil {
		logger.Log.Warnf("Attempt to download (%s) failed. Error: %s", url, err)
		return
	}

	if cache != nil {
		_, err = cache.CacheDownload(url, dst)
		if err != nil {
			logger.Log.Warnf("Failed to cache download (%s).\n%s", url, err)
			err = nil
		}
	}

	return
}

// DownloadFile downloads url into dst. caCerts may be nil. On error, dst is
// removed.
func DownloadFile(url, dst string, caCerts *x509.CertPool, tlsCerts []tls.Certificate) (err error) {
	logger.Log.Debugf("Downloading (%s) -> (%s)", url, dst)

	dstFile, err := os.Create(dst)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			cleanupErr := file.RemoveFileIfExists(dst)
			if cleanupErr != nil {
				logger.Log.Errorf("Failed to remove incomplete download file '%s': %s", dst, cleanupErr)
			}
		}
		dstFile.Close()
	}()

	tlsConfig := &tls.Config{
		RootCAs:      caCerts,
		Certificates: tlsCerts,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	client := &http.Client{
		Transport: transport,
	}

	response, err := client.Get(url)
	if err != nil {
		return
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("invalid response: %v", response.StatusCode)
	}

	_, err = io.Copy(dstFile, response.Body)

	return
}

// CheckIndexReachable probes the given package index URL, retrying transient
// failures. A response from the server, even an HTTP error status, counts as
// reachable; only transport failures do not.
func CheckIndexReachable(indexUrl string) error {
	const (
		retryAttempts = 3
		retryDuration = time.Second
		probeTimeout  = 10 * time.Second
	)

	client := &http.Client{
		Timeout: probeTimeout,
	}

	err := retry.Run(func() error {
		response, err := client.Head(indexUrl)
		if err != nil {
			logger.Log.Warnf("Package index not reachable yet: %s", err)
			return err
		}

		response.Body.Close()

		logger.Log.Debugf("Package index responded with status %d", response.StatusCode)

		return nil
	}, retryAttempts, retryDuration)

	if err != nil {
		return fmt.Errorf("package index '%s' is not reachable\n%w", indexUrl, err)
	}

	return nil
}
