package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArowuTest/safeplate-admin-backend/api/routes"
	"github.com/ArowuTest/safeplate-admin-backend/internal/config"
	"github.com/ArowuTest/safeplate-admin-backend/internal/handlers"
	"github.com/ArowuTest/safeplate-admin-backend/internal/jobs"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/safeplate-admin-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	mongodb "github.com/ArowuTest/safeplate-admin-backend/pkg/mongodb"
	"github.com/ArowuTest/safeplate-admin-backend/pkg/push"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// storage is the set of repositories the services run on
type storage struct {
	users          repositories.UserRepository
	venues         repositories.VenueRepository
	coupons        repositories.CouponRepository
	campaigns      repositories.CampaignRepository
	referrals      repositories.ReferralRepository
	certifications repositories.CertificationRepository
	notifications  repositories.NotificationRepository
	settings       repositories.SettingsRepository
	ping           func(ctx context.Context) error
	close          func(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to ./config.yaml when present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			log.WithError(err).Error("Error closing storage")
		}
	}()

	gateway, err := newGateway(ctx, cfg.Push)
	if err != nil {
		log.WithError(err).Fatal("Failed to create push gateway")
	}

	// Core engine
	resolver := services.NewAudienceResolver(store.users)
	ledger := services.NewPointsLedger(store.users)
	dispatcher := services.NewNotificationDispatcher(store.users, store.notifications, gateway, services.DispatcherConfig{
		Concurrency:   cfg.Push.Concurrency,
		Timeout:       cfg.Push.Timeout,
		RatePerSecond: cfg.Push.RatePerSecond,
		Burst:         cfg.Push.Burst,
	})
	issuer := services.NewRewardIssuer(store.coupons, resolver, dispatcher)
	activator := services.NewCampaignActivator(store.campaigns, resolver, dispatcher)
	referralReviewer := services.NewReferralReviewer(store.referrals, store.venues, ledger, dispatcher, cfg.Rewards.ReferralBonus)
	certificationReviewer := services.NewCertificationReviewer(store.certifications, store.venues)

	// Admin services
	userService := services.NewUserService(store.users, ledger)
	venueService := services.NewVenueService(store.venues)
	couponService := services.NewCouponService(store.coupons)
	campaignService := services.NewCampaignService(store.campaigns)
	notificationService := services.NewNotificationService(resolver, dispatcher, store.notifications)
	settingsService := services.NewSettingsService(store.settings)
	statsService := services.NewStatsService(store.users, store.venues, store.coupons, store.campaigns,
		store.referrals, store.certifications, store.notifications)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		UserHandler:         handlers.NewUserHandler(userService, notificationService),
		VenueHandler:        handlers.NewVenueHandler(venueService),
		CouponHandler:       handlers.NewCouponHandler(couponService, issuer),
		CampaignHandler:     handlers.NewCampaignHandler(campaignService, activator),
		ReviewHandler:       handlers.NewReviewHandler(referralReviewer, certificationReviewer),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		SettingsHandler:     handlers.NewSystemSettingsHandler(settingsService, store.ping),
		StatsHandler:        handlers.NewStatsHandler(statsService),
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(cfg.Jobs.MaintenanceSchedule, store.users, store.venues)
		if err := scheduler.Start(ctx); err != nil {
			log.WithError(err).Fatal("Failed to start job scheduler")
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":    cfg.Server.Port,
			"storage": cfg.Storage.Driver,
			"push":    gateway.Name(),
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	log.Info("Server exiting")
}

func setupLogging(cfg config.LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}
	log.SetOutput(out)

	if level >= log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("Using in-memory storage; data is lost on restart")
		repos := memory.NewRepositories(memory.New())
		return &storage{
			users:          repos.Users,
			venues:         repos.Venues,
			coupons:        repos.Coupons,
			campaigns:      repos.Campaigns,
			referrals:      repos.Referrals,
			certifications: repos.Certifications,
			notifications:  repos.Notifications,
			settings:       repos.Settings,
			close:          func(context.Context) error { return nil },
		}, nil

	case "mongodb":
		client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB.Database)
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.WithField("database", cfg.MongoDB.Database).Info("Connected to MongoDB")
		return &storage{
			users:          mongorepo.NewUserRepository(db),
			venues:         mongorepo.NewVenueRepository(db),
			coupons:        mongorepo.NewCouponRepository(db),
			campaigns:      mongorepo.NewCampaignRepository(db),
			referrals:      mongorepo.NewReferralRepository(db),
			certifications: mongorepo.NewCertificationRepository(db),
			notifications:  mongorepo.NewNotificationRepository(db),
			settings:       mongorepo.NewSettingsRepository(db),
			ping:           client.Ping,
			close:          client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func newGateway(ctx context.Context, cfg config.PushConfig) (push.Gateway, error) {
	if cfg.Provider == "fcm" {
		return push.NewFCMGatewayFromFile(ctx, push.FCMConfig{
			ProjectID: cfg.ProjectID,
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
		}, cfg.CredentialsFile)
	}
	return push.NewMockGateway("mock"), nil
}
