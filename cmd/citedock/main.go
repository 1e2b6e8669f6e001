// Command citedock uploads case documents and works with their citations.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/citedock/internal/adapters/driven/api"
	"github.com/custodia-labs/citedock/internal/adapters/driven/config/file"
	"github.com/custodia-labs/citedock/internal/adapters/driven/gcs"
	"github.com/custodia-labs/citedock/internal/adapters/driven/metrics"
	"github.com/custodia-labs/citedock/internal/adapters/driven/pdf"
	"github.com/custodia-labs/citedock/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/citedock/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/citedock/internal/adapters/driven/transport"
	"github.com/custodia-labs/citedock/internal/adapters/driving/cli"
	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
	"github.com/custodia-labs/citedock/internal/core/services"
	"github.com/custodia-labs/citedock/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settingsService := services.NewSettingsService(openConfig())

	settings, err := settingsService.Get()
	if err != nil {
		logger.Error("settings: %v", err)
		return 1
	}

	recorder := metrics.NewRecorder()

	journal, snapshots, closeStore := openStorage(settings.Storage.DataDir)
	defer closeStore()

	// Interface-typed so an unconfigured API stays a nil interface.
	var (
		docsAPI       driven.DocumentAPI
		citationAPI   driven.CitationAPI
		extractionAPI driven.ExtractionAPI
		media         driven.MediaIssuer
		caseAPI       driven.CaseAPI
	)
	if settings.API.IsConfigured() {
		client, err := api.NewClient(api.Config{
			BaseURL:           settings.API.BaseURL,
			Token:             settings.API.Token,
			Timeout:           settings.API.Timeout(),
			RequestsPerSecond: settings.API.RequestsPerSecond,
		}, recorder)
		if err != nil {
			logger.Error("api: %v", err)
			return 1
		}
		docsAPI, citationAPI, extractionAPI, media = client, client, client, client
		caseAPI = client

		if settings.Media.Provider == domain.MediaProviderGCS {
			issuer, err := gcs.NewIssuer(ctx, gcs.Config{
				Bucket:          settings.Media.GCSBucket,
				CredentialsFile: settings.Media.GCSCredentialsFile,
				Expiry:          settings.Media.URLExpiry(),
			})
			if err != nil {
				logger.Error("media: %v", err)
				return 1
			}
			defer issuer.Close()
			media = issuer
		}
	} else {
		logger.Debug("api.base_url not set, network commands are disabled")
	}

	registry := services.NewDocumentRegistry(docsAPI, snapshots)
	citations, err := services.NewCitationService(citationAPI, registry, services.DefaultCitationCacheSize)
	if err != nil {
		logger.Error("citations: %v", err)
		return 1
	}
	extraction := services.NewExtractionTracker(extractionAPI, docsAPI, registry, recorder, settings.Extraction)

	var uploadTransport driven.UploadTransport
	if media != nil {
		uploadTransport = transport.NewTransport(nil)
	}
	uploads := services.NewUploadCoordinator(
		media,
		uploadTransport,
		docsAPI,
		registry,
		journal,
		pdf.NewInspector(settings.Upload.MaxFileSize(), settings.Upload.RequirePDF),
		recorder,
		settings.Upload.Concurrency,
	)

	workspace := services.NewCaseWorkspace(registry, uploads, extraction, citations, docsAPI, settings.Upload.DoneGrace())
	poller := services.NewStatusPoller(registry, settings.Extraction.PollInterval(), citations.OnExtractionChange)

	cli.SetServices(&cli.Services{
		Workspace:  workspace,
		Cases:      services.NewCaseService(caseAPI, registry),
		Registry:   registry,
		Extraction: extraction,
		Poller:     poller,
		Settings:   settingsService,
		Metrics:    recorder.Handler(),
	})
	cli.SetVersion(version)

	if err := cli.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// openConfig opens the TOML config, falling back to settings taken from
// CITEDOCK_* variables when the config directory is unusable.
func openConfig() driven.ConfigStore {
	store, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("config: %v (using environment settings, changes will not be saved)", err)
		return memory.NewConfigStoreFromEnv(os.Environ())
	}
	return store
}

// openStorage opens the SQLite store, falling back to in-memory stores so
// commands still work when the data directory is unusable.
func openStorage(dataDir string) (driven.UploadJournal, driven.SnapshotStore, func()) {
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Warn("storage: %v (using in-memory stores)", err)
		return memory.NewUploadJournal(), memory.NewSnapshotStore(), func() {}
	}
	return store.UploadJournal(), store.SnapshotStore(), func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("storage: close: %v", cerr)
		}
	}
}
