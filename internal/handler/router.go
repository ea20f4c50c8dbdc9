package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/worklink/internal/metrics"
	"github.com/hitoshi/worklink/internal/middleware"
	"github.com/hitoshi/worklink/internal/model"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Metrics           middleware.RequestRecorder

	// アカウント
	WorkerAccounts       WorkerAccountService
	StartupAccounts      StartupAccountService
	ManufacturerAccounts ManufacturerAccountService

	// ギグ・機材
	GigService     GigServiceInterface
	MachineService MachineServiceInterface
	PublicGigs     PublicGigService
	PublicMachines PublicMachineService
	GigApply       GigApplyService
	MachineApply   MachineApplyService

	// 運用
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → Recovery → SecurityHeaders → Metrics → Logging
//
// 認証が必要なグループには RequireAuth(ロール) → RateLimit(General) を追加し、
// サインアップ・サインインにはIPベースのRateLimit(Signup)を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	workerHandler := NewWorkerHandler(deps.WorkerAccounts, deps.GigApply, deps.MachineApply)
	startupHandler := NewStartupHandler(deps.StartupAccounts, deps.GigService)
	manufacturerHandler := NewManufacturerHandler(deps.ManufacturerAccounts, deps.MachineService)
	publicHandler := NewPublicHandler(deps.PublicGigs, deps.PublicMachines)

	signupLimit := deps.RateLimiter.SignupMiddleware()
	generalLimit := deps.RateLimiter.GeneralMiddleware()

	// --- 認証不要のルート ---

	r.Get("/healthz", healthzHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// 公開リスティング
	r.Route("/api/public", func(r chi.Router) {
		r.Get("/gigs", publicHandler.ListGigs)
		r.Get("/gigs/{id}", publicHandler.GetGig)
		r.Get("/machines", publicHandler.ListMachines)
		r.Get("/machines/{id}", publicHandler.GetMachine)
	})

	// --- ワーカー ---

	r.Route("/api/worker", func(r chi.Router) {
		r.With(signupLimit).Post("/signup", workerHandler.Signup)
		r.With(signupLimit).Post("/signin", workerHandler.Signin)

		// 認証が必要なルート
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.TokenVerifier, model.RoleWorker))
			r.Use(generalLimit)

			r.Get("/profile", workerHandler.GetProfile)
			r.Put("/profile", workerHandler.UpdateProfile)
			r.Post("/apply-gig/{id}", workerHandler.ApplyGig)
			r.Post("/apply-machine/{id}", workerHandler.ApplyMachine)
			r.Get("/applied-gigs", workerHandler.AppliedGigs)
			r.Get("/applied-machines", workerHandler.AppliedMachines)
		})
	})

	// --- スタートアップ ---

	r.Route("/api/startup", func(r chi.Router) {
		r.With(signupLimit).Post("/signup", startupHandler.Signup)
		r.With(signupLimit).Post("/signin", startupHandler.Signin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.TokenVerifier, model.RoleStartup))
			r.Use(generalLimit)

			r.Get("/profile", startupHandler.GetProfile)
			r.Put("/profile", startupHandler.UpdateProfile)
			r.Post("/create-gig", startupHandler.CreateGig)
			r.Get("/your-gigs", startupHandler.YourGigs)
			r.Put("/update-gig/{id}", startupHandler.UpdateGig)
			r.Delete("/delete-gig/{id}", startupHandler.DeleteGig)
			r.Get("/gig-applications/{id}", startupHandler.GigApplications)
			r.Patch("/approve-reject-application/{id}", startupHandler.DecideApplication)
		})
	})

	// --- メーカー ---

	r.Route("/api/manufacturer", func(r chi.Router) {
		r.With(signupLimit).Post("/signup", manufacturerHandler.Signup)
		r.With(signupLimit).Post("/signin", manufacturerHandler.Signin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.TokenVerifier, model.RoleManufacturer))
			r.Use(generalLimit)

			r.Get("/profile", manufacturerHandler.GetProfile)
			r.Put("/profile", manufacturerHandler.UpdateProfile)
			r.Post("/add-machine", manufacturerHandler.AddMachine)
			r.Get("/your-machines", manufacturerHandler.YourMachines)
			r.Put("/update-machine/{id}", manufacturerHandler.UpdateMachine)
			r.Delete("/delete-machine/{id}", manufacturerHandler.DeleteMachine)
			r.Get("/machine-applications/{id}", manufacturerHandler.MachineApplications)
			r.Patch("/approve-reject-application/{id}", manufacturerHandler.DecideApplication)
		})
	})

	return r
}

// healthzHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func healthzHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		statusCode := http.StatusOK

		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				status = "unavailable"
				statusCode = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
