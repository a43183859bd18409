package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/videohub/videohub-api/internal/api/rest"
	"github.com/videohub/videohub-api/internal/api/rest/handlers"
	"github.com/videohub/videohub-api/internal/config"
	"github.com/videohub/videohub-api/internal/db"
	"github.com/videohub/videohub-api/internal/integration/cloudinary"
	"github.com/videohub/videohub-api/internal/kafka"
	"github.com/videohub/videohub-api/internal/metrics"
	"github.com/videohub/videohub-api/internal/middleware"
	"github.com/videohub/videohub-api/internal/repository"
	"github.com/videohub/videohub-api/internal/service"
	"github.com/videohub/videohub-api/pkg/logger"
)

// Version подставляется при сборке через ldflags.
var Version = "dev"

// App контейнер всех компонентов приложения.
type App struct {
	Config *config.Config
	Router *gin.Engine
	Server *rest.Server

	SystemMetrics metrics.SystemMetrics

	log *logger.Logger
}

// NewApp собирает приложение из инфраструктурных зависимостей:
// репозитории, сервисы, обработчики, маршруты.
func NewApp(
	cfg *config.Config,
	dbClient *db.DBClient,
	cache *repository.RedisCacheRepository,
	producer kafka.Producer,
	log *logger.Logger,
) *App {
	registry := prometheus.NewRegistry()
	platformMetrics := metrics.NewPlatformMetrics(registry, log)
	systemMetrics := metrics.NewSystemMetrics(registry, log)

	mediaHost := cloudinary.NewClient(cloudinary.Config{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
		Folder:    cfg.Cloudinary.Folder,
	}, log)

	// Репозитории
	sqlDB := dbClient.DB()
	userRepo := repository.NewPostgresUserRepository(sqlDB, log)
	videoRepo := repository.NewPostgresVideoRepository(sqlDB, log)
	socialRepo := repository.NewPostgresSocialRepository(sqlDB, log)
	commentRepo := repository.NewPostgresCommentRepository(sqlDB, log)
	playlistRepo := repository.NewPostgresPlaylistRepository(sqlDB, log)
	taxonomyRepo := repository.NewPostgresTaxonomyRepository(sqlDB, log)
	planRepo := repository.NewPostgresPlanRepository(sqlDB, log)

	subscriptionRepo := repository.NewPostgresSubscriptionRepository(sqlDB, log)
	if cache != nil {
		subscriptionRepo = repository.NewCachedSubscriptionRepository(subscriptionRepo, cache, log)
		log.Infow("Using cached subscription repository")
	}

	// Сервисы
	authCfg := service.AuthConfig{
		JWTSecret:  []byte(cfg.Auth.JWTSecret),
		TokenTTL:   time.Duration(cfg.Auth.TokenTTLHrs) * time.Hour,
		BcryptCost: cfg.Auth.BcryptCost,
	}

	userSvc := service.NewUserService(userRepo, mediaHost, platformMetrics, authCfg, log)
	videoSvc := service.NewVideoService(videoRepo, mediaHost, producer, platformMetrics, log)
	socialSvc := service.NewSocialService(socialRepo, userRepo, videoRepo, log)
	commentSvc := service.NewCommentService(commentRepo, videoRepo, log)
	playlistSvc := service.NewPlaylistService(playlistRepo, videoRepo, log)
	taxonomySvc := service.NewTaxonomyService(taxonomyRepo, log)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, planRepo, cache, producer, platformMetrics, log)
	adminSvc := service.NewAdminService(userRepo, log)

	// HTTP-слой
	jwtMW := middleware.NewJWTMiddleware(log, &middleware.DefaultTokenValidator{
		Secret: []byte(cfg.Auth.JWTSecret),
	})

	h := rest.Handlers{
		Health:       handlers.NewHealthHandler(Version),
		User:         handlers.NewUserHandler(userSvc, videoSvc, log),
		Video:        handlers.NewVideoHandler(videoSvc, log),
		Social:       handlers.NewSocialHandler(socialSvc, log),
		Comment:      handlers.NewCommentHandler(commentSvc, log),
		Playlist:     handlers.NewPlaylistHandler(playlistSvc, log),
		Taxonomy:     handlers.NewTaxonomyHandler(taxonomySvc, log),
		Subscription: handlers.NewSubscriptionHandler(subscriptionSvc, log),
		Admin:        handlers.NewAdminHandler(adminSvc, subscriptionSvc, log),
	}

	router := rest.SetupRouter(h, jwtMW, registry, log)
	server := rest.NewServer(cfg, router, log)

	return &App{
		Config:        cfg,
		Router:        router,
		Server:        server,
		SystemMetrics: systemMetrics,
		log:           log,
	}
}
