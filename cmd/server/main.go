package main

import (
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"barangayportal/config"
	"barangayportal/handlers"
	"barangayportal/internal/database"
	"barangayportal/services/access"
	"barangayportal/services/accounts"
	"barangayportal/services/announcements"
	"barangayportal/services/committees"
	"barangayportal/services/documents"
	"barangayportal/services/notifications"
	"barangayportal/services/payments"
	"barangayportal/services/sessions"
	"barangayportal/services/terms"
	"barangayportal/services/uploads"
	"barangayportal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if cfg.LogPath != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		})
	}

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DBPath})
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	accountsSvc, err := accounts.NewService(cfg.DataDir)
	if err != nil {
		log.Fatalf("accounts service: %v", err)
	}
	if accountsSvc.HasDefaultPassword() {
		log.Printf("[main] WARNING: the captain account still uses the default password")
	}

	termsSvc, err := terms.NewService(cfg.DataDir)
	if err != nil {
		log.Fatalf("terms service: %v", err)
	}

	uploadsSvc, err := uploads.NewService(afero.NewOsFs(),
		filepath.Join(cfg.DataDir, "uploads", "tmp"),
		filepath.Join(cfg.DataDir, "uploads", "banners"),
		cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("uploads service: %v", err)
	}

	sessionsSvc := sessions.NewService(cfg.IdleTimeout, cfg.ActivityThrottle)
	lockout := access.NewLockout(sessionsSvc, access.DefaultLockoutDelay)

	notificationStore := database.NewNotificationRepository(db.Connection())
	documentRepo := database.NewDocumentRepository(db.Connection())
	notificationsSvc := notifications.NewService(documentRepo, accountsSvc, notificationStore, notifications.DefaultWarningDelay)
	documentsSvc := documents.NewService(documentRepo, notificationsSvc)

	announcementsSvc := announcements.NewService(database.NewAnnouncementRepository(db.Connection()))
	committeesSvc := committees.NewService(database.NewCommitteeRepository(db.Connection()))

	provider := payments.NewProvider(cfg.PaymentProviderURL)
	poller := payments.NewPoller(provider, cfg.PaymentPollEvery)

	// Ending a session for any reason tears down its notification queue.
	sessionsSvc.OnEnd(func(userID string, reason sessions.EndReason) {
		notificationsSvc.Clear(userID)
	})

	maintenance := access.NewController(access.MaintenanceState{
		Active:  cfg.MaintenanceMode,
		Message: cfg.MaintenanceMessage,
		EndsAt:  cfg.MaintenanceEnd,
	})

	registry := handlers.Registry{
		Auth:          handlers.NewAuthHandler(accountsSvc, sessionsSvc, notificationsSvc, termsSvc),
		Notifications: handlers.NewNotificationsHandler(notificationsSvc),
		Documents:     handlers.NewDocumentsHandler(documentsSvc, sessionsSvc),
		Payments:      handlers.NewPaymentsHandler(documentsSvc, provider, poller),
		Terms:         handlers.NewTermsHandler(termsSvc),
		Announcements: handlers.NewAnnouncementsHandler(announcementsSvc, uploadsSvc),
		Committees:    handlers.NewCommitteesHandler(committeesSvc),
		Banners:       handlers.NewBannersHandler(uploadsSvc),
		Accounts:      handlers.NewAccountsHandler(accountsSvc, sessionsSvc),
		Maintenance:   handlers.NewMaintenanceHandler(maintenance, cfg.BypassKeyword),
	}

	r := utils.NewRouter()
	handlers.MountRoutes(r, registry, sessionsSvc, lockout, maintenance, cfg.BypassKeyword)

	hsrv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := hsrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
