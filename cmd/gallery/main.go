package main

import (
	"context"
	"embed"
	"encoding/gob"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/awsconfig"
	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/lightboxpreload/cmd/gallery/internal/albums"
	"github.com/adampresley/lightboxpreload/cmd/gallery/internal/configuration"
	"github.com/adampresley/lightboxpreload/cmd/gallery/internal/thumbnails"
	"github.com/adampresley/lightboxpreload/cmd/gallery/internal/viewer"
	"github.com/adampresley/lightboxpreload/pkg/fetchers"
	"github.com/adampresley/lightboxpreload/pkg/models"
	"github.com/adampresley/lightboxpreload/pkg/preload"
	"github.com/adampresley/lightboxpreload/pkg/services"
	_ "github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

var (
	Version string = "development"
	appName string = "lightboxpreload"

	//go:embed sql-migrations
	sqlMigrationsFs embed.FS

	config configuration.Config

	/* Services */
	albumLoader             albums.AlbumLoader
	albumService            services.AlbumServicer
	db                      *sqlz.DB
	mapper                  *preload.ThumbnailMapper
	metrics                 *preload.Metrics
	registry                *viewer.Registry
	sessionService          sessions.Session[*models.ViewerSession]
	thumbnailCreatorService thumbnails.ThumbnailCreator

	/* Controllers */
	viewerController viewer.ViewerController
)

func main() {
	var (
		err      error
		s3Client s3.S3Client
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("albumSource", config.AlbumSource),
		slog.String("awsEndpointUrl", config.AwsEndpointUrl),
		slog.String("awsRegion", config.AwsRegion),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Setup services
	 */
	binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	if db, err = sqlz.Connect("sqlite", config.DSN); err != nil {
		panic(err)
	}

	migrateDatabase()
	gob.Register(&models.ViewerSession{})

	cookieStore := sessions.NewCookieStore(config.CookieSecret)
	sessionService = sessions.NewSessionWrapper[*models.ViewerSession](cookieStore, "lightboxpreloadviewer", "viewer")

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics = preload.NewMetrics(promRegistry)
	mapper = preload.NewThumbnailMapper()

	albumService = services.NewAlbumService(services.AlbumServiceConfig{
		DB: db,
	})

	imageFetchers := map[string]preload.Fetcher{}

	httpFetcher := fetchers.NewHttpFetcher(fetchers.HttpFetcherConfig{
		Timeout:   time.Duration(config.FetchTimeoutSeconds) * time.Second,
		UserAgent: appName + "/" + Version,
	})

	imageFetchers["http"] = httpFetcher
	imageFetchers["https"] = httpFetcher

	switch config.AlbumSource {
	case "page":
		if albumLoader, err = albums.NewPageAlbumLoader(albums.PageAlbumLoaderConfig{
			BaseURL: config.GalleryBaseURL,
			Mapper:  mapper,
			Page:    config.GalleryPage,
		}); err != nil {
			panic(err)
		}

	default:
		s3Client = setupS3()

		imageFetchers["s3"] = fetchers.NewS3Fetcher(fetchers.S3FetcherConfig{
			S3Client: s3Client,
		})

		albumLoader = albums.NewCatalogAlbumLoader(albums.CatalogAlbumLoaderConfig{
			AlbumService: albumService,
			Bucket:       config.AwsBucket,
			Mapper:       mapper,
			S3Client:     s3Client,
		})

		thumbnailCreatorService = thumbnails.NewThumbnailCreatorService(thumbnails.ThumbnailCreatorConfig{
			AlbumService:    albumService,
			AwsBucket:       config.AwsBucket,
			AwsRegion:       config.AwsRegion,
			MaxCacheWorkers: config.MaxCacheWorkers,
			MaxHeight:       uint(config.ThumbnailHeight),
			MaxWidth:        uint(config.ThumbnailWidth),
			S3Client:        s3Client,
			ShutdownCtx:     shutdownCtx,
		})
	}

	registry = viewer.NewRegistry(viewer.RegistryConfig{
		Fetcher:              fetchers.NewSchemeFetcher(imageFetchers),
		IdleTimeout:          time.Duration(config.SessionIdleMinutes) * time.Minute,
		Mapper:               mapper,
		MaxConcurrentFetches: config.MaxConcurrentFetches,
		Metrics:              metrics,
		ShutdownCtx:          shutdownCtx,
		WrapAround:           config.WrapAround,
	})

	/*
	 * Setup controllers
	 */
	viewerController = viewer.NewViewerController(viewer.ViewerControllerConfig{
		AlbumLoader:      albumLoader,
		ImageWaitTimeout: time.Duration(config.FetchTimeoutSeconds) * time.Second,
		Registry:         registry,
		WarmThumbnails:   config.WarmThumbnails,
		WrapAround:       config.WrapAround,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	viewerSessionMiddleware := newViewerSessionMiddleware(
		sessionService,
		[]string{
			"/heartbeat",
			"/metrics",
		},
	)

	withSession := []mux.MiddlewareFunc{viewerSessionMiddleware}
	metricsHandler := promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /metrics", HandlerFunc: metricsHandler.ServeHTTP},
		{Path: "GET /albums", HandlerFunc: viewerController.AlbumList, Middlewares: withSession},
		{Path: "POST /viewer/open", HandlerFunc: viewerController.Open, Middlewares: withSession},
		{Path: "POST /viewer/change", HandlerFunc: viewerController.Change, Middlewares: withSession},
		{Path: "POST /viewer/next", HandlerFunc: viewerController.Next, Middlewares: withSession},
		{Path: "POST /viewer/prev", HandlerFunc: viewerController.Prev, Middlewares: withSession},
		{Path: "GET /viewer/display", HandlerFunc: viewerController.Display, Middlewares: withSession},
		{Path: "GET /viewer/image", HandlerFunc: viewerController.Image, Middlewares: withSession},
	}

	routerConfig := mux.RouterConfig{
		Address:          config.Host,
		Debug:            Version == "development",
		HttpWriteTimeout: 60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Start the idle session cleanup job
	 */
	registry.StartCleanupRoutine(time.Minute)
	defer registry.StopCleanupRoutine()

	/*
	 * Start the thumbnail creator job
	 */
	if thumbnailCreatorService != nil {
		setupThumbnailCreator(shutdownCtx)
	}

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	mux.Shutdown(httpServer)
	registry.Close()
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func setupS3() s3.S3Client {
	var (
		err      error
		s3Client s3.S3Client
	)

	awsConfig := &awsconfig.Config{
		Endpoint:        config.AwsEndpointUrl,
		Region:          config.AwsRegion,
		AccessKeyID:     config.AwsAccessKeyId,
		SecretAccessKey: config.AwsSecretAccessKey,
	}

	retrier.Retry(func() error {
		if err = awsConfig.Load(); err != nil {
			slog.Error("failed to load AWS config. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		panic(err)
	}

	if s3Client, err = s3.NewClient(awsConfig); err != nil {
		panic(err)
	}

	return s3Client
}

func migrateDatabase() {
	var (
		err  error
		dirs []fs.DirEntry
		b    []byte
	)

	if dirs, err = sqlMigrationsFs.ReadDir("sql-migrations"); err != nil {
		panic(err)
	}

	for _, d := range dirs {
		if d.IsDir() {
			continue
		}

		if strings.HasPrefix(d.Name(), "commit") {
			if b, err = fs.ReadFile(sqlMigrationsFs, filepath.Join("sql-migrations", d.Name())); err != nil {
				panic(err)
			}

			if err = runSqlScript(b); err != nil {
				if !isIgnorableError(err) {
					panic(err)
				}
			}
		}
	}
}

func runSqlScript(script []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := db.Exec(ctx, string(script))
	return err
}

func isIgnorableError(err error) bool {
	if strings.Contains(err.Error(), "duplicate column") {
		return true
	}

	return false
}

func setupThumbnailCreator(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		running := true

		runner := func() {
			defer func() {
				running = false
			}()

			thumbnailCreatorService.CreateThumbnails()
			slog.Info("thumbnail creator finished.")
		}

		runner()

		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return

			case <-ticker.C:
				if running {
					slog.Info("thumbnail creator already running. skipping...")
					continue
				}

				running = true
				runner()
			}
		}
	}()
}
