package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
)

// HealthChecker はデータベース疎通確認のインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// MetricsRecorder はルーター配下のハンドラーが使う計測インターフェースの集約。
// metrics.Collectorが満たす。nilの場合は計測を行わない。
type MetricsRecorder interface {
	middleware.AuthFailureRecorder
	middleware.HTTPMetricsRecorder
	JobCreatedRecorder
	ApplicationRecorder
	UploadRecorder
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 観測
	HealthChecker  HealthChecker
	Metrics        MetricsRecorder
	MetricsHandler http.Handler

	// サービス
	JobService         JobServiceInterface
	ApplicationService ApplicationServiceInterface
	AccountService     AccountServiceInterface
	UploadService      UploadServiceInterface

	// 静的配信するアップロードディレクトリ
	UploadDir string
}

// AccountServiceInterface は各ハンドラーのアカウントサービスインターフェースの集約。
// account.Serviceが満たす。
type AccountServiceInterface interface {
	CandidateAccountServiceInterface
	EmployerAccountServiceInterface
	AdminAccountServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → SecurityHeaders → (認証ルートのみ) Auth → Logging → RateLimit(General)
//
// リクエストログは認証後に出力し、user_idとroleを含める。
// 公開ルート（/health、/metrics、GET /api/jobs/all、/uploads/*）は認証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	jobHandler := NewJobHandler(deps.JobService, deps.Metrics)
	appHandler := NewApplicationHandler(deps.ApplicationService, deps.Metrics)
	candidateHandler := NewCandidateHandler(deps.AccountService, deps.UploadService, deps.Metrics)
	employerHandler := NewEmployerHandler(deps.AccountService)
	adminHandler := NewAdminHandler(deps.AccountService)

	// interface値にnilポインタが入るのを避ける
	var authRecorder middleware.AuthFailureRecorder
	var httpRecorder middleware.HTTPMetricsRecorder
	if deps.Metrics != nil {
		authRecorder = deps.Metrics
		httpRecorder = deps.Metrics
	}

	// --- 認証不要のルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, httpRecorder))

		r.Get("/health", newHealthHandler(deps.HealthChecker))
		if deps.MetricsHandler != nil {
			r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
		}

		// 求人一覧は未認証でも閲覧できる
		r.Get("/api/jobs/all", jobHandler.ListAllJobs)

		// アップロード済みファイルの静的配信
		if deps.UploadDir != "" {
			fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir)))
			r.Get("/uploads/*", fileServer.ServeHTTP)
		}
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → Logging → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, authRecorder))
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, httpRecorder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 求人管理（企業のみ）
		r.Route("/api/jobs", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleEmployer))

				r.Post("/post", jobHandler.CreateJob)
				r.Get("/my-jobs", jobHandler.ListMyJobs)
				r.Put("/{jobId}", jobHandler.UpdateJob)
				r.Delete("/{jobId}", jobHandler.DeleteJob)
			})

			// レガシー互換の応募ルート
			r.With(middleware.RequireRole(model.RoleCandidate)).
				Post("/apply/{jobId}", appHandler.Apply)
		})

		// 応募管理
		r.Route("/api/applications", func(r chi.Router) {
			r.With(middleware.RequireRole(model.RoleCandidate)).
				Post("/apply/{jobId}", appHandler.Apply)
			r.With(middleware.RequireRole(model.RoleCandidate)).
				Get("/my-applications", appHandler.ListMyApplications)

			// 所有者チェックはサービス層のポリシーで行う
			r.With(middleware.RequireAnyRole(model.RoleEmployer, model.RoleAdmin)).
				Get("/job/{jobId}", appHandler.ListApplicants)
		})

		// 求職者のプロフィールとアップロード
		r.Route("/api/candidate", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleCandidate))

				r.Get("/profile", candidateHandler.GetProfile)
				r.Put("/profile", candidateHandler.UpdateProfile)
				r.Get("/uploads", candidateHandler.ListUploads)

				// ファイル書き込みを伴うルートはアップロード専用レート制限を追加
				r.With(deps.RateLimiter.UploadMiddleware()).
					Post("/upload/photo", candidateHandler.UploadPhoto)
				r.With(deps.RateLimiter.UploadMiddleware()).
					Post("/upload/resume", candidateHandler.UploadResume)
				r.With(deps.RateLimiter.UploadMiddleware()).
					Post("/uploads", candidateHandler.UploadFiles)
			})

			r.With(middleware.RequireAnyRole(model.RoleEmployer, model.RoleAdmin)).
				Get("/all", candidateHandler.ListAll)
		})

		// 企業のプロフィール
		r.Route("/api/employer", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleEmployer))

			r.Get("/profile", employerHandler.GetProfile)
			r.Put("/profile", employerHandler.UpdateProfile)
			r.Get("/candidates", candidateHandler.ListAll)
		})

		// 管理者向けアカウント管理
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleAdmin))

			r.Get("/candidates", adminHandler.ListCandidates)
			r.Get("/employers", adminHandler.ListEmployers)
			r.Delete("/candidate/{id}", adminHandler.DeleteCandidate)
			r.Delete("/employer/{id}", adminHandler.DeleteEmployer)
		})
	})

	return r
}

// newHealthHandler はデータベース疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
