package app

import (
	"becoming_backend/internal/config"
	"becoming_backend/internal/controller"
	"becoming_backend/internal/notify"
	"becoming_backend/internal/push"
	"becoming_backend/internal/repository"
	"becoming_backend/internal/service"
	"becoming_backend/internal/util"
	"becoming_backend/pkg/configwatcher"
	"becoming_backend/pkg/database"
	"becoming_backend/pkg/logger"
	"becoming_backend/pkg/monitoring"
	"becoming_backend/pkg/security"
	"becoming_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	slotCacheSize   = 100000
	shutdownTimeout = 10 * time.Second
)

type App struct {
	Config     *config.Config
	ConfigDir  string
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client
	Mongo      *mongo.Client
	Transport  push.Transport
	Chat       *notify.ChatClient
	Dispatcher *notify.Dispatcher

	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user          *repository.UserRepository
	refreshToken  *repository.RefreshTokenRepository
	settings      *repository.SettingsRepository
	goal          *repository.GoalRepository
	signal        *repository.SignalRepository
	pushToken     *repository.PushTokenRepository
	checkIn       *repository.CheckInRepository
	dueUser       *repository.DueUserRepository
	generationLog *repository.GenerationLogRepository
}

type services struct {
	auth      *service.AuthService
	storage   *service.StorageService
	user      *service.UserService
	goal      *service.GoalService
	settings  *service.SettingsService
	pushToken *service.PushTokenService
	signal    *service.SignalService
	checkIn   *service.CheckInService
	ai        *service.AIService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	goal      *controller.GoalController
	settings  *controller.SettingsController
	pushToken *controller.PushTokenController
	signal    *controller.SignalController
	checkIn   *controller.CheckInController
	ai        *controller.AIController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	repos := &repositories{
		user:         repository.NewUserRepository(db),
		refreshToken: repository.NewRefreshTokenRepository(db),
		settings:     repository.NewSettingsRepository(db),
		goal:         repository.NewGoalRepository(db),
		signal:       repository.NewSignalRepository(db),
		pushToken:    repository.NewPushTokenRepository(db),
		checkIn:      repository.NewCheckInRepository(db),
		dueUser:      repository.NewDueUserRepository(db),
	}
	if a.Mongo != nil {
		repos.generationLog = repository.NewGenerationLogRepository(
			a.Mongo.Database(a.Config.Mongo.Database),
			a.Config.Mongo.Collection,
		)
	}
	return repos
}

// initPipeline 组装生成与投递链路，HTTP 按需生成与定时调度共享同一个模型客户端
func (a *App) initPipeline(repos *repositories) (*notify.Selector, notify.Generator, error) {
	cfg := a.Config

	bank, err := notify.LoadTemplateBank()
	if err != nil {
		return nil, nil, fmt.Errorf("load template bank: %w", err)
	}

	var recorder notify.GenerationRecorder = notify.NopRecorder{}
	if repos.generationLog != nil {
		recorder = notify.NewMongoRecorder(repos.generationLog, logger.Named("recorder"))
	}

	rnd := notify.NewRand(0)
	a.Chat = notify.NewChatClient(cfg.AI, cfg.Scheduler.Workers)
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		a.Chat.UpdateConfig(newCfg.AI)
	})

	selector := notify.NewSelector(rnd)
	generator := notify.NewOpenAIGenerator(a.Chat, bank, rnd, recorder, logger.Named("generator"))

	a.Transport, err = push.New(context.Background(), cfg.Push, logger.Named("push"))
	if err != nil {
		return nil, nil, fmt.Errorf("init push transport: %w", err)
	}

	var guard notify.SlotGuard
	if a.Redis != nil {
		guard, err = notify.NewSlotGuard(a.Redis)
	} else {
		guard, err = notify.NewMemorySlotGuard(slotCacheSize)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("init slot guard: %w", err)
	}

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, nil, err
	}

	a.Dispatcher = notify.NewDispatcher(
		notify.NewRepositoryStore(repos.dueUser, repos.goal, repos.signal),
		selector,
		generator,
		a.Transport,
		guard,
		notify.Options{
			Spec:          cfg.Scheduler.Spec,
			Location:      loc,
			Workers:       cfg.Scheduler.Workers,
			HistoryWindow: cfg.Scheduler.HistoryWindow,
		},
		logger.Named("dispatcher"),
	)
	return selector, generator, nil
}

func (a *App) initServices(repos *repositories, selector *notify.Selector, generator notify.Generator) *services {
	cfg := a.Config
	s := &services{}

	s.storage = service.NewStorageService(&cfg.Storage, logger.Named("storage"))
	s.auth = service.NewAuthService(repos.user, repos.refreshToken, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.goal = service.NewGoalService(repos.goal)
	s.settings = service.NewSettingsService(repos.settings)
	s.pushToken = service.NewPushTokenService(repos.pushToken, a.Transport.ValidToken)
	s.signal = service.NewSignalService(repos.signal)
	s.checkIn = service.NewCheckInService(repos.checkIn, repos.goal)
	s.ai = service.NewAIService(
		a.Chat,
		selector,
		generator,
		repos.goal,
		repos.signal,
		repos.settings,
		cfg.Scheduler.HistoryWindow,
		logger.Named("ai"),
	)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		user:      controller.NewUserController(s.user),
		goal:      controller.NewGoalController(s.goal),
		settings:  controller.NewSettingsController(s.settings),
		pushToken: controller.NewPushTokenController(s.pushToken),
		signal:    controller.NewSignalController(s.signal),
		checkIn:   controller.NewCheckInController(s.checkIn),
		ai:        controller.NewAIController(s.ai),
		health:    controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp 初始化全部依赖，configDir 用于配置热更新
func NewApp(cfg *config.Config, configDir string) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	app := &App{Config: cfg, ConfigDir: configDir}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.DB = db

	if app.Redis, err = database.InitRedis(&cfg.Redis); err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	// 审计库不可用时只记录日志，不影响推送
	if app.Mongo, err = database.InitMongo(&cfg.Mongo); err != nil {
		logger.Log.Warn("MongoDB unavailable, generation audit disabled", zap.Error(err))
		app.Mongo = nil
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		app.tracer = tp
	}

	// 监控初始化
	monitoring.Init()

	repos := app.initRepositories(db)
	selector, generator, err := app.initPipeline(repos)
	if err != nil {
		return nil, err
	}

	if err := util.RegisterValidators(app.Transport.ValidToken); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	services := app.initServices(repos, selector, generator)
	controllers := app.initControllers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app, nil
}

// watchConfig 配置文件变化时依次调用已注册的回调
func (a *App) watchConfig(ctx context.Context) {
	err := configwatcher.WatchConfig(ctx, a.ConfigDir, logger.Named("config"), func(newCfg *config.Config) {
		for _, callback := range a.configCallbacks {
			callback(newCfg)
		}
	})
	if err != nil {
		logger.Log.Error("Config watcher stopped", zap.Error(err))
	}
}

func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.watchConfig(ctx)

	if a.Config.Scheduler.Enabled {
		if err := a.Dispatcher.Start(); err != nil {
			logger.Log.Fatal("Failed to start dispatcher", zap.Error(err))
		}
	} else {
		logger.Log.Info("Scheduler disabled, no scheduled signals will be sent")
	}

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.Dispatcher.Stop(shutdownCtx)
	a.Close(shutdownCtx)

	logger.Log.Info("Server exiting")
}

// Close 释放外部连接
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			logger.Log.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error("Failed to close Redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Log.Sync()
}
