package rest

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/videohub/videohub-api/internal/api/rest/handlers"
	"github.com/videohub/videohub-api/internal/middleware"
	"github.com/videohub/videohub-api/pkg/logger"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

	registerValidationsOnce sync.Once
)

// registerValidations добавляет кастомные правила в валидатор gin.
func registerValidations() {
	registerValidationsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
}

// Handlers собирает все HTTP-обработчики приложения.
type Handlers struct {
	Health       *handlers.HealthHandler
	User         *handlers.UserHandler
	Video        *handlers.VideoHandler
	Social       *handlers.SocialHandler
	Comment      *handlers.CommentHandler
	Playlist     *handlers.PlaylistHandler
	Taxonomy     *handlers.TaxonomyHandler
	Subscription *handlers.SubscriptionHandler
	Admin        *handlers.AdminHandler
}

// SetupRouter настраивает маршруты и middleware приложения.
func SetupRouter(h Handlers, jwtMW *middleware.JWTMiddleware, registry *prometheus.Registry, log *logger.Logger) *gin.Engine {
	registerValidations()

	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", h.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")

	// Аутентификация
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.User.Register)
		auth.POST("/login", h.User.Login)
	}

	// Публичная витрина планов
	v1.GET("/plans", h.Subscription.ListPlans)

	// Таксономия каталога
	v1.GET("/categories", h.Taxonomy.ListCategories)
	v1.GET("/categories/:slug", h.Taxonomy.GetCategory)
	v1.GET("/tags", h.Taxonomy.ListTags)

	// Публичные профили
	v1.GET("/channels/:username", h.User.GetByUsername)

	// Пользователи
	users := v1.Group("/users")
	{
		me := users.Group("/me", jwtMW.RequireAuth())
		{
			me.GET("", h.User.Me)
			me.PATCH("", h.User.UpdateMe)
			me.DELETE("", h.User.DeleteMe)
			me.POST("/avatar", h.User.UploadAvatar)
			me.GET("/history", h.Video.WatchHistory)
			me.GET("/saved", h.Social.SavedVideos)
		}

		users.GET("/:id", h.User.Get)
		users.GET("/:id/videos", h.Video.ListByUploader)
		users.GET("/:id/followers", h.Social.Followers)
		users.GET("/:id/following", h.Social.Following)
		users.GET("/:id/playlists", jwtMW.OptionalAuth(), h.Playlist.ListByUser)

		follow := users.Group("/:id/follow", jwtMW.RequireAuth())
		{
			follow.POST("", h.Social.Follow)
			follow.DELETE("", h.Social.Unfollow)
			follow.GET("", h.Social.IsFollowing)
		}
	}

	// Видео
	videos := v1.Group("/videos")
	{
		videos.GET("", h.Video.List)
		videos.GET("/hot", h.Video.ListHot)
		videos.GET("/trending", h.Video.ListTrending)
		videos.GET("/featured", h.Video.ListFeatured)
		videos.GET("/uploader/:id", h.Video.ListByUploader)
		videos.GET("/feed", jwtMW.RequireAuth(), h.Video.Feed)
		videos.GET("/recommendations", jwtMW.RequireAuth(), h.Video.Recommendations)
		videos.GET("/:id", h.Video.Get)
		videos.GET("/:id/stats", h.Video.ViewStats)
		videos.GET("/:id/comments", h.Comment.ListByVideo)

		videos.POST("/upload", jwtMW.RequireAuth(), h.Video.Upload)
		videos.POST("", jwtMW.RequireAuth(), h.Video.Create)
		videos.PATCH("/:id", jwtMW.RequireAuth(), h.Video.Update)
		videos.DELETE("/:id", jwtMW.RequireAuth(), h.Video.Delete)

		// Просмотры пишутся и анонимно
		videos.POST("/:id/view", jwtMW.OptionalAuth(), h.Video.RecordView)

		videos.POST("/:id/like", jwtMW.RequireAuth(), h.Social.ToggleLike)
		videos.GET("/:id/like", jwtMW.RequireAuth(), h.Social.LikeStatus)
		videos.POST("/:id/save", jwtMW.RequireAuth(), h.Social.SaveVideo)
		videos.DELETE("/:id/save", jwtMW.RequireAuth(), h.Social.UnsaveVideo)
		videos.GET("/:id/save", jwtMW.RequireAuth(), h.Social.IsSaved)

		videos.POST("/:id/comments", jwtMW.RequireAuth(), h.Comment.Create)
	}

	// Комментарии
	comments := v1.Group("/comments")
	{
		comments.GET("/:id/replies", h.Comment.ListReplies)
		comments.PATCH("/:id", jwtMW.RequireAuth(), h.Comment.Update)
		comments.DELETE("/:id", jwtMW.RequireAuth(), h.Comment.Delete)
		comments.POST("/:id/pin", jwtMW.RequireAuth(), h.Comment.Pin)
		comments.DELETE("/:id/pin", jwtMW.RequireAuth(), h.Comment.Unpin)
	}

	// Плейлисты
	playlists := v1.Group("/playlists")
	{
		playlists.GET("/:id", jwtMW.OptionalAuth(), h.Playlist.Get)
		playlists.GET("/:id/videos", jwtMW.OptionalAuth(), h.Playlist.Videos)

		playlists.POST("", jwtMW.RequireAuth(), h.Playlist.Create)
		playlists.PATCH("/:id", jwtMW.RequireAuth(), h.Playlist.Update)
		playlists.DELETE("/:id", jwtMW.RequireAuth(), h.Playlist.Delete)
		playlists.POST("/:id/videos/:videoId", jwtMW.RequireAuth(), h.Playlist.AddVideo)
		playlists.DELETE("/:id/videos/:videoId", jwtMW.RequireAuth(), h.Playlist.RemoveVideo)
	}

	// Подписки
	subscription := v1.Group("/subscription", jwtMW.RequireAuth())
	{
		subscription.GET("/status", h.Subscription.Status)
		subscription.POST("/subscribe", h.Subscription.Subscribe)
		// Продление это та же операция подписки
		subscription.POST("/extend", h.Subscription.Subscribe)
	}

	// Администрирование
	admin := v1.Group("/admin", jwtMW.RequireAuth(), jwtMW.RequireAdmin())
	{
		admin.GET("/verify", h.Admin.Verify)
		admin.GET("/users", h.Admin.ListUsers)
		admin.POST("/users/:id/ban", h.Admin.BanUser)
		admin.DELETE("/users/:id/ban", h.Admin.UnbanUser)
		admin.POST("/users/:id/promote", h.Admin.PromoteToAdmin)
		admin.GET("/stats", h.Admin.PlatformStats)

		admin.GET("/plans", h.Admin.ListAllPlans)
		admin.GET("/plans/stats", h.Admin.PlanStats)
		admin.POST("/plans", h.Admin.CreatePlan)
		admin.PUT("/plans/:id", h.Admin.UpdatePlan)
		admin.DELETE("/plans/:id", h.Admin.DeactivatePlan)

		admin.GET("/users/:id/subscription", h.Admin.UserSubscription)
		admin.PUT("/users/:id/subscription", h.Admin.SetSubscriptionExpiry)
		admin.POST("/users/:id/subscription/extend", h.Admin.ExtendSubscription)

		admin.POST("/categories", h.Taxonomy.CreateCategory)
		admin.PUT("/categories/:id", h.Taxonomy.UpdateCategory)
		admin.DELETE("/categories/:id", h.Taxonomy.DeleteCategory)
		admin.POST("/tags", h.Taxonomy.CreateTag)
		admin.DELETE("/tags/:id", h.Taxonomy.DeleteTag)
	}

	return router
}
