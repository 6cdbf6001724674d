package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"docquery/internal/ai"
	appsvc "docquery/internal/app"
	"docquery/internal/bootstrap"
	"docquery/internal/cache"
	"docquery/internal/chunker"
	"docquery/internal/platform/rabbitmq"
	"docquery/internal/repository"
	"docquery/internal/transport/http/handler"
	"docquery/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	userRepo := repository.NewUserRepository(app.DB)
	docRepo := repository.NewDocumentRepository(app.DB)
	chunkRepo := repository.NewChunkRepository(app.DB)
	sessionRepo := repository.NewChatSessionRepository(app.DB)

	llmClient := ai.NewOpenAICompatibleClient()
	embedder := ai.NewEmbedder(llmClient, ai.EmbeddingConfig{
		BaseURL:    app.Config.LLM.BaseURL,
		APIKey:     app.Config.LLM.APIKey,
		Model:      app.Config.LLM.EmbeddingModel,
		Dimensions: app.Config.LLM.EmbeddingDimensions,
	})
	chatCfg := ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	}

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	docService := appsvc.NewDocumentService(
		docRepo,
		embedder,
		rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.IngestEventQueue),
		chunker.Params{
			MinTokens:     app.Config.RAG.MinTokens,
			MaxTokens:     app.Config.RAG.MaxTokens,
			OverlapTokens: app.Config.RAG.OverlapTokens,
		},
		app.Config.RAG.MaxUploadBytes,
	)
	queryService := appsvc.NewQueryService(
		docRepo,
		chunkRepo,
		embedder,
		llmClient,
		chatCfg,
		appsvc.QueryOptions{
			TopK:            app.Config.RAG.TopK,
			MaxDistance:     app.Config.RAG.MaxDistance,
			HistoryWindow:   app.Config.RAG.HistoryWindow,
			AnswerMaxTokens: app.Config.RAG.AnswerMaxTokens,
			Temperature:     app.Config.RAG.Temperature,
		},
	)
	sessionCache := cache.NewSessionListCache(
		app.Redis,
		time.Duration(app.Config.Redis.SessionListTTLSeconds)*time.Second,
	)
	sessionService := appsvc.NewSessionService(sessionRepo, sessionCache)

	authHandler := handler.NewAuthHandler(authService)
	docHandler := handler.NewDocumentHandler(docService)
	queryHandler := handler.NewQueryHandler(queryService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	healthHandler := handler.NewHealthHandler(app, embedder)

	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	docGroup := v1.Group("/documents")
	docGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	docGroup.POST("", docHandler.Upload)
	docGroup.GET("", docHandler.List)
	docGroup.DELETE("/:id", docHandler.Delete)

	v1.POST("/ask", middleware.AuthJWT(app.Config.Auth.JWTSecret), queryHandler.Ask)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	chatGroup.POST("/sessions", sessionHandler.Save)
	chatGroup.GET("/sessions", sessionHandler.List)
	chatGroup.GET("/sessions/:id", sessionHandler.Get)
	chatGroup.DELETE("/sessions/:id", sessionHandler.Delete)

	return router
}
