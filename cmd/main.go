package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/auth"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/config"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/exifdate"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/gallery"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/handlers"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/metrics"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/notify"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/repository"
	service "github.com/yassinbenelhajlahsen/gallery-sub001/internal/services"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/storage"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/thumbnail"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/urlcache"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

func main() {
	// load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(err)
	}
	dev := cfg.App.Env == "development"

	// logger
	logger, _ := utils.NewLogger(dev)
	defer func() { _ = logger.Sync() }()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	db := mc.Database(cfg.Mongo.Database)
	mediaRepo := repository.NewMediaRepo(mc,
		db.Collection(cfg.Mongo.ImagesCollection),
		db.Collection(cfg.Mongo.VideosCollection),
	)
	eventRepo := repository.NewEventRepo(db.Collection(cfg.Mongo.EventsCollection))

	// S3 store
	store, err := storage.NewS3Store(context.Background(), cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.Endpoint, cfg.PresignTTL)
	if err != nil {
		logger.Fatalf("s3 init: %v", err)
	}

	// signed URL cache
	urls := urlcache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.SignedURLTTL)
	if err := urls.Ping(context.Background()); err != nil {
		logger.Fatalf("redis ping: %v", err)
	}
	resolve := func(ctx context.Context, key string) (string, error) {
		return urls.ResolveURL(ctx, key, store.ResolveURL)
	}

	// read model
	view := gallery.New(mediaRepo, eventRepo, resolve, logger)

	// notification sink
	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		kn := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer func() { _ = kn.Close() }()
		notifier = notify.Multi{notifier, kn}
	}

	// pipelines
	thumbs := thumbnail.NewGenerator(cfg.Upload.ThumbWidth, cfg.Upload.ThumbHeight, cfg.Upload.ThumbQuality)
	msvc := service.NewMediaService(mediaRepo, eventRepo, store, thumbs, view, notifier, exifdate.Infer, cfg.ConfirmTTL, logger)

	// auth
	authSvc, err := auth.NewService(cfg.Auth.AdminPasswordHash, cfg.Auth.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("auth init: %v", err)
	}

	// warm the read model
	if err := view.RefreshMedia(context.Background()); err != nil {
		logger.Warnf("initial media refresh: %v", err)
	}
	if err := view.RefreshEvents(context.Background()); err != nil {
		logger.Warnf("initial events refresh: %v", err)
	}

	// fiber app & routes
	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Upload.MaxFileBytes),
	})
	h := handlers.NewHandler(msvc, view, mediaRepo, resolve, store.Stat, cfg.Upload.MaxFileBytes)
	ah := handlers.NewAuthHandler(authSvc)

	app.Post("/api/login", ah.Login)
	app.Get("/api/media", h.ListMedia)
	app.Get("/api/events", h.ListEvents)
	app.Get("/api/search", h.Search)
	app.Get("/api/media/:kind/:id/url", h.GetSignedURL)

	admin := app.Group("/api/admin", authSvc.Middleware())
	admin.Post("/upload", h.Upload)
	admin.Post("/events", h.CreateEvent)
	admin.Get("/media/:kind/:id/info", h.MediaInfo)
	admin.Post("/media/:kind/:id/delete", h.ArmDeleteMedia)
	admin.Post("/events/:id/delete", h.ArmDeleteEvent)
	admin.Post("/delete/confirm", h.ConfirmDelete)
	admin.Post("/delete/cancel", h.CancelDelete)

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infof("starting gallery service on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen failed: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutdown requested")
	timeoutCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()

	_ = app.Shutdown()
	_ = urls.Close()
	_ = mc.Disconnect(timeoutCtx)
	logger.Info("shutdown completed")
}
