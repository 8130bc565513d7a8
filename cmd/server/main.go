package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ElberTsolindo/pmsfcacademy/config"
	"github.com/ElberTsolindo/pmsfcacademy/internal/api/handler"
	"github.com/ElberTsolindo/pmsfcacademy/internal/api/router"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/database"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/email"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/jwt"
	applogger "github.com/ElberTsolindo/pmsfcacademy/pkg/logger"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/metrics"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.String("academy", cfg.Academy.Name),
		zap.String("timezone", cfg.Academy.Timezone),
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level == "debug", logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、登录限流与维护锁将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 外部依赖
	deps := service.Deps{
		JWT:     jwt.NewManager(&cfg.Auth),
		Mailer:  email.New(cfg.Mail.APIKey, cfg.Mail.From, logger),
		Metrics: metrics.New(),
	}
	if rdb != nil {
		deps.Tokens = rdb
		deps.Locker = rdb
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, deps, logger)
	h := handler.NewHandler(cfg, svc)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := svc.Auth.EnsureBootstrapAdmin(ctx); err != nil {
		logger.Fatal("创建初始管理员失败", zap.Error(err))
	}

	// 7. 维护任务：启动时执行一次，可选定时执行
	go runMaintenance(ctx, cfg, svc.Maintenance, handler.AcademyClock(&cfg.Academy), logger)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, deps.JWT, rdb, db, deps.Metrics, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// runMaintenance 启动时执行去重与巡检，SweepInterval > 0 时按间隔重复
func runMaintenance(ctx context.Context, cfg *config.Config, svc service.MaintenanceService, now handler.Clock, logger *zap.Logger) {
	run := func() {
		if err := svc.RunAll(ctx, now()); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("维护任务执行失败", zap.Error(err))
		}
	}

	if cfg.Feature.SweepOnStartup {
		run()
	}
	if cfg.Feature.SweepInterval <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.Feature.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
