package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/customs-binder/backend/internal/api"
	"github.com/customs-binder/backend/internal/classify"
	"github.com/customs-binder/backend/internal/config"
	"github.com/customs-binder/backend/internal/feeinfo"
	"github.com/customs-binder/backend/internal/folder"
	"github.com/customs-binder/backend/internal/merge"
	"github.com/customs-binder/backend/internal/settings"
	"github.com/customs-binder/backend/internal/storage"
	"github.com/customs-binder/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "CustomsBinder.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	embeddedMode := web.HasEmbeddedFiles()

	// Initialize storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir(), cfg.GetMergedDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Load persisted settings, allowing a site-wide precedence override
	settingsStore, err := settings.NewFileStore(cfg.GetDataDir())
	if err != nil {
		fmt.Printf("Failed to initialize settings store: %v\n", err)
		os.Exit(1)
	}
	set := settingsStore.Load()
	if !settingsStore.Exists() {
		// First run: a site-wide order.yaml seeds the precedence list.
		order, customsOnlyFirst, err := settings.LoadDefaultOrder(filepath.Join(cfg.GetDataDir(), "defaults", "order.yaml"))
		if err != nil {
			fmt.Printf("Warning: failed to load default order: %v\n", err)
		} else {
			set.PrefixOrder = order
			set.CustomsOnlyFirst = customsOnlyFirst
			if err := settingsStore.Save(set); err != nil {
				fmt.Printf("Warning: failed to persist seeded settings: %v\n", err)
			}
		}
	}

	// Initialize the folder store with the persisted rules
	folders := folder.NewStore(classify.Ruleset{
		Order:            set.PrefixOrder,
		CustomsOnlyFirst: set.CustomsOnlyFirst,
	})
	folders.ApplySettings(set)

	fees := feeinfo.NewService(cfg.GetTempDir())

	merger, err := merge.NewMerger(cfg.GetTempDir())
	if err != nil {
		fmt.Printf("Failed to initialize merger: %v\n", err)
		os.Exit(1)
	}

	// Re-ingest uploads that survived a restart
	if uploads, err := fileStore.ListUploads(); err == nil && len(uploads) > 0 {
		incoming := make([]folder.IncomingFile, 0, len(uploads))
		for _, u := range uploads {
			incoming = append(incoming, folder.IncomingFile{
				Name:       u.OriginalName,
				UploadName: u.Name,
				Size:       u.Size,
			})
		}
		folders.AddFiles(incoming, "")
		fmt.Printf("Restored %d uploaded files\n", len(incoming))

		go func() {
			for _, u := range uploads {
				if !feeinfo.IsInvoiceName(u.OriginalName) {
					continue
				}
				path, err := fileStore.UploadPath(u.Name)
				if err != nil {
					continue
				}
				if info := fees.Lookup(u.Name, path); info != nil {
					folders.SetFeeInfo(u.Name, info)
				}
			}
		}()
	}

	hub := api.NewHub()
	// Every binder mutation flushes the settings blob and wakes the open
	// tabs. The blob is what restores folder order after a restart.
	folders.SetOnChange(func() {
		if err := settingsStore.Save(folders.Settings()); err != nil {
			fmt.Printf("[settings] save failed: %v\n", err)
		}
		hub.NotifyStateChanged()
	})

	h := api.NewHandler(fileStore, folders, settingsStore, fees, merger, hub)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" ||
				strings.HasPrefix(path, "/api/state")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.Contains(path, "/upload") ||
				strings.Contains(path, "/merge") ||
				strings.Contains(path, "/ws")
		},
		ErrorMessage: "Request timeout",
	}))

	if cfg.Advanced.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Advanced.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				return strings.Contains(c.Request().URL.Path, "/ws")
			},
		}))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, h)

	// Register embedded frontend if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		} else {
			fmt.Println("Serving embedded frontend from binary")
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Customs Binder Server                           ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	e.Logger.Fatal(e.StartServer(s))
}
