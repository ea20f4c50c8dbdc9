// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/worklink/internal/auth"
	"github.com/hitoshi/worklink/internal/config"
	"github.com/hitoshi/worklink/internal/database"
	"github.com/hitoshi/worklink/internal/gig"
	"github.com/hitoshi/worklink/internal/handler"
	"github.com/hitoshi/worklink/internal/logger"
	"github.com/hitoshi/worklink/internal/machine"
	"github.com/hitoshi/worklink/internal/metrics"
	"github.com/hitoshi/worklink/internal/middleware"
	"github.com/hitoshi/worklink/internal/repository"
	"github.com/hitoshi/worklink/internal/security"
)

// 具象サービスがハンドラーの要求するインターフェースを満たすことの確認。
var (
	_ handler.WorkerAccountService       = (*auth.WorkerService)(nil)
	_ handler.StartupAccountService      = (*auth.StartupService)(nil)
	_ handler.ManufacturerAccountService = (*auth.ManufacturerService)(nil)
	_ handler.GigServiceInterface        = (*gig.Service)(nil)
	_ handler.MachineServiceInterface    = (*machine.Service)(nil)
	_ handler.PublicGigService           = (*gig.Service)(nil)
	_ handler.PublicMachineService       = (*machine.Service)(nil)
	_ handler.GigApplyService            = (*gig.Service)(nil)
	_ handler.MachineApplyService        = (*machine.Service)(nil)
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	workerRepo := repository.NewPostgresWorkerRepo(db)
	startupRepo := repository.NewPostgresStartupRepo(db)
	manufacturerRepo := repository.NewPostgresManufacturerRepo(db)
	gigRepo := repository.NewPostgresGigRepo(db)
	machineRepo := repository.NewPostgresMachineRepo(db)
	gigAppRepo := repository.NewPostgresGigApplicationRepo(db)
	machineAppRepo := repository.NewPostgresMachineApplicationRepo(db)

	// 3. トークン・サニタイザーの初期化
	tokens, err := auth.NewTokenManager(auth.TokenManagerConfig{
		Secret: []byte(cfg.TokenSecret),
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}
	sanitizer := security.NewDescriptionSanitizer()

	// 4. ドメインサービスの初期化
	workerService := auth.NewWorkerService(workerRepo, tokens)
	startupService := auth.NewStartupService(startupRepo, tokens)
	manufacturerService := auth.NewManufacturerService(manufacturerRepo, tokens)
	gigService := gig.NewService(gigRepo, gigAppRepo, sanitizer)
	machineService := machine.NewService(machineRepo, machineAppRepo, sanitizer)

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. レート制限の初期化（configはreq/min単位、rate.Limitはreq/sec単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rateLimitPerSecond(cfg.RateLimitGeneral)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.SignupRate = rateLimitPerSecond(cfg.RateLimitSignup)
	rateLimiterCfg.SignupBurst = cfg.RateLimitSignup
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		TokenVerifier:     tokens,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),
		Metrics:           collector,

		WorkerAccounts:       workerService,
		StartupAccounts:      startupService,
		ManufacturerAccounts: manufacturerService,

		GigService:     gigService,
		MachineService: machineService,
		PublicGigs:     gigService,
		PublicMachines: machineService,
		GigApply:       gigService,
		MachineApply:   machineService,

		HealthChecker: db,
		Gatherer:      registry,
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// rateLimitPerSecond はreq/min設定値をrate.Limit（req/sec）に変換する。
func rateLimitPerSecond(perMinute int) rate.Limit {
	return rate.Limit(float64(perMinute) / 60.0)
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
