package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appsvc "rizz-social/internal/app"
	"rizz-social/internal/bootstrap"
	"rizz-social/internal/cache"
	"rizz-social/internal/pkg/jwtutil"
	"rizz-social/internal/platform/rabbitmq"
	"rizz-social/internal/repository"
	"rizz-social/internal/transport/http/handler"
	"rizz-social/internal/transport/http/middleware"
)

const maxMultipartMemory = 8 << 20

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.Timeout(app.Config.RequestTimeout()),
	)

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Optional dependencies stay untyped nil when not configured.
	var guard appsvc.LoginGuard
	if app.Redis != nil {
		guard = cache.NewLoginGuard(app.Redis, app.Config.Auth.LoginMaxFailures, app.Config.LoginLockout())
	}
	var publisher appsvc.EventPublisher
	if app.MQConn != nil {
		publisher = rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.PostEventQueue)
	}

	userRepo := repository.NewUserRepository(app.MySQL)
	postRepo := repository.NewPostRepository(app.MySQL)
	authService := appsvc.NewAuthService(
		userRepo,
		app.Images,
		guard,
		app.Config.Auth.JWTSecret,
		app.Config.TokenTTL(),
	)
	postService := appsvc.NewPostService(postRepo, userRepo, app.Images, publisher)
	userService := appsvc.NewUserService(userRepo, app.Images, publisher)

	maxImageBytes := app.Config.Storage.MaxImageBytes
	authHandler := handler.NewAuthHandler(authService, maxImageBytes)
	postHandler := handler.NewPostHandler(postService, maxImageBytes)
	userHandler := handler.NewUserHandler(userService, maxImageBytes)
	uploadHandler := handler.NewUploadHandler(app.Images)

	router.GET("/uploads/:name", uploadHandler.Serve)

	requireAuth := middleware.AuthJWT(jwtutil.NewVerifier(app.Config.Auth.JWTSecret))

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	postGroup := v1.Group("/posts")
	postGroup.GET("", postHandler.List)
	postGroup.GET("/:id", postHandler.Get)
	postGroup.GET("/user/:userId", postHandler.ListByUser)
	postGroup.POST("", requireAuth, postHandler.Create)
	postGroup.PUT("/:id", requireAuth, postHandler.Update)
	postGroup.DELETE("/:id", requireAuth, postHandler.Delete)

	userGroup := v1.Group("/users")
	userGroup.Use(requireAuth)
	userGroup.GET("/profile", userHandler.Profile)
	userGroup.PUT("/profile", userHandler.UpdateProfile)
	userGroup.GET("/:id", userHandler.Get)

	return router
}
