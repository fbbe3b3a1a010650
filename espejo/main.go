package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"espejo/espejo/config"
	"espejo/espejo/controllers"
	"espejo/espejo/middlewares"
	"espejo/espejo/routes"
	"espejo/espejo/services/translate"
	"espejo/espejo/utils/fetcher"
	"espejo/espejo/utils/hostguard"
	"espejo/espejo/utils/logging"
	"espejo/espejo/utils/pdf"
	"espejo/espejo/utils/reader"
	"espejo/espejo/utils/urlrewrite"
)

const userAgent = "Mozilla/5.0 (compatible; espejo/1.0)"

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()
	patterns, err := config.LoadPatterns(cfg.PatternsFile)
	if err != nil {
		logging.AppLogger.Warn("patterns file error, using defaults", zap.Error(err))
	}
	fetchTimeout := time.Duration(cfg.FetchTimeoutSecs) * time.Second

	guard := hostguard.New(patterns.AssetAllowHosts, patterns.AssetAllowSuffixes)
	rewriter := urlrewrite.New("/asset", "/page")
	fetch := fetcher.New(userAgent)
	translator := translate.NewOrchestrator(
		translate.NewClient(cfg.TranslateAPIKey, cfg.TranslateAPIURL),
		patterns.TranslationBlockedTags,
	)
	sanitizer := reader.NewSanitizer(
		patterns.SanitizerAllowedTags,
		patterns.SanitizerAllowedAttrs,
		patterns.SanitizerDropTags,
	)
	scorer := reader.NewLinkScorer(rewriter, patterns.LinkExcludeTokens)
	pdfExtractor := pdf.NewExtractor(fetch, cfg.PdfMaxBytes, fetchTimeout)

	pageCtrl := controllers.NewPageController(cfg, patterns, guard, fetch, rewriter, translator)
	readerCtrl := controllers.NewReaderController(cfg, patterns, guard, fetch, rewriter, translator, sanitizer, scorer)
	pdfCtrl := controllers.NewPdfController(guard, pdfExtractor)
	assetCtrl := controllers.NewAssetController(cfg, guard, fetch, rewriter)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/page", routes.PageRoutes(pageCtrl))
	r.Mount("/reader", routes.ReaderRoutes(readerCtrl))
	r.Mount("/links", routes.LinkRoutes(readerCtrl))
	r.Mount("/pdf", routes.PdfRoutes(pdfCtrl))
	r.Mount("/asset", routes.AssetRoutes(assetCtrl))
	r.Mount("/health", routes.HealthRoutes(healthCtrl))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
