// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package main

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/pocketsignal/toolkit/internal/artifactcache"
	"github.com/pocketsignal/toolkit/internal/downloadcache"
	"github.com/pocketsignal/toolkit/internal/exe"
	"github.com/pocketsignal/toolkit/internal/file"
	"github.com/pocketsignal/toolkit/internal/logger"
	"github.com/pocketsignal/toolkit/internal/network"
	"github.com/pocketsignal/toolkit/internal/retry"

	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("reqfetch", "Fetches a pinned requirements file into the workspace.")

	logFile  = exe.LogFileFlag(app)
	logLevel = exe.LogLevelFlag(app)

	uri      = app.Flag("uri", "URI of the requirements file to fetch.").Required().String()
	outFile  = app.Flag("output", "Output file path.").Default("requirements.txt").String()
	cacheDir = app.Flag("cache", "Path to artifact cache.").String()
	force    = app.Flag("force", "Overwrite the output file if it already exists.").Bool()

	caCertFile    = app.Flag("ca-cert", "Root certificate authority to use when downloading files.").String()
	tlsClientCert = app.Flag("tls-cert", "TLS client certificate to use when downloading files.").String()
	tlsClientKey  = app.Flag("tls-key", "TLS client key to use when downloading files.").String()
)

func main() {
	app.Version(exe.ToolkitVersion)
	kingpin.MustParse(app.Parse(os.Args[1:]))
	logger.InitBestEffort(*logFile, *logLevel)

	if !govalidator.IsURL(*uri) {
		logger.Log.Fatalf("Invalid URI: %s", *uri)
	}

	// Open the download cache if specified
	var downloadCache *downloadcache.DownloadCache
	if *cacheDir != "" {
		cache, err := artifactcache.Open(*cacheDir)
		if err != nil {
			logger.PanicOnError(err)
		}

		downloadCache, err = downloadcache.Open(cache)
		if err != nil {
			logger.PanicOnError(err)
		}
	}

	// Load up certs.
	caCerts, err := x509.SystemCertPool()
	logger.PanicOnError(err, "Received error calling x509.SystemCertPool(). Error: %v", err)
	if *caCertFile != "" {
		newCACert, err := os.ReadFile(*caCertFile)
		if err != nil {
			logger.Log.Panicf("Invalid CA certificate (%s), error: %s", *caCertFile, err)
		}

		caCerts.AppendCertsFromPEM(newCACert)
	}

	var tlsCerts []tls.Certificate
	if *tlsClientCert != "" && *tlsClientKey != "" {
		cert, err := tls.LoadX509KeyPair(*tlsClientCert, *tlsClientKey)
		if err != nil {
			logger.Log.Panicf("Invalid TLS client key pair (%s) (%s), error: %s", *tlsClientCert, *tlsClientKey, err)
		}

		tlsCerts = append(tlsCerts, cert)
	}

	err = fetchRequirements(*uri, *outFile, *force, downloadCache, caCerts, tlsCerts)
	logger.PanicOnError(err)

	logger.Log.Infof("Fetched (%s) -> (%s)", *uri, *outFile)
}

// fetchRequirements downloads uri to a temp file next to outputFilePath and
// renames it into place, so a failed download never clobbers an existing
// requirements file. An existing output file is left alone unless force is
// set.
func fetchRequirements(uri, outputFilePath string, force bool, cache *downloadcache.DownloadCache, caCerts *x509.CertPool, tlsCerts []tls.Certificate) error {
	const (
		// With 5 attempts, an initial delay of 1 second, and a backoff
		// factor of 2.0 the total time spent retrying will be ~30 seconds.
		downloadRetryAttempts = 5
		failureBackoffBase    = 2.0
		downloadRetryDuration = time.Second
	)
	var noCancel chan struct{} = nil

	if !force && file.Exists(outputFilePath) {
		return fmt.Errorf("output file (%s) already exists; pass --force to overwrite it", outputFilePath)
	}

	outputDir := filepath.Dir(outputFilePath)
	tempPath := filepath.Join(outputDir, fmt.Sprintf(".reqfetch-%s.tmp", uuid.New().String()))

	defer file.RemoveFileIfExists(tempPath)

	_, err := retry.RunWithExpBackoff(func() error {
		return network.CacheAwareDownloadFile(uri, tempPath, cache, caCerts, tlsCerts)
	}, downloadRetryAttempts, downloadRetryDuration, failureBackoffBase, noCancel)
	if err != nil {
		return err
	}

	return os.Rename(tempPath, outputFilePath)
}
