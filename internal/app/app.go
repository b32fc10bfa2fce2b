package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/controller"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/repository"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/service"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/database"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/logger"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/monitoring"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/security"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	analysisRun *repository.AnalysisRunRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	ingestion  *service.IngestionService
	feature    *service.FeatureService
	prediction *service.PredictionService
	difficulty *service.DifficultyService
	insight    *service.InsightService
	report     *service.ReportService
	training   *service.TrainingService
	analysis   *service.AnalysisService
}

type controllers struct {
	auth     *controller.AuthController
	analysis *controller.AnalysisController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 配置热更新分发,仅分析参数在运行中生效
func (a *App) ReloadConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("配置已热更新",
		zap.Float64("riskHigh", cfg.Analytics.RiskHighThreshold),
		zap.Float64("riskMedium", cfg.Analytics.RiskMediumThreshold),
		zap.Float64("completionThreshold", cfg.Analytics.CompletionThreshold))
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		analysisRun: repository.NewAnalysisRunRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(cfg)
	s.ingestion = service.NewIngestionService()
	s.feature = service.NewFeatureService()
	s.prediction = service.NewPredictionService(cfg.Analytics)
	s.difficulty = service.NewDifficultyService()
	s.insight = service.NewInsightService()
	s.report = service.NewReportService(s.storage, rdb)
	s.training = service.NewTrainingService(s.ingestion, s.feature)

	s.analysis = service.NewAnalysisService(
		s.ingestion,
		s.feature,
		s.prediction,
		s.difficulty,
		s.insight,
		s.report,
		s.training,
		s.storage,
		repos.analysisRun,
		cfg.Analytics,
	)

	if cfg.Models.Autoload {
		if err := s.prediction.LoadModels(cfg.Models.CompletionPath, cfg.Models.DropoutPath); err != nil {
			logger.Log.Warn("模型加载失败,预测接口在模型就绪前不可用", zap.Error(err))
		} else {
			logger.Log.Info("模型加载完成",
				zap.String("completion", cfg.Models.CompletionPath),
				zap.String("dropout", cfg.Models.DropoutPath))
		}
	}

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		analysis: controller.NewAnalysisController(s.analysis, s.prediction, a.Config.Models),
		health:   controller.NewHealthController(db, s.prediction),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("learning-intel", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/files", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(services.analysis.ApplyConfig)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 关闭服务
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
