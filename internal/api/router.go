package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/voxlate/voxlate/internal/api/handlers"
	"github.com/voxlate/voxlate/internal/api/middleware"
	"github.com/voxlate/voxlate/internal/auth"
	"github.com/voxlate/voxlate/internal/config"
	"github.com/voxlate/voxlate/internal/history"
	"github.com/voxlate/voxlate/internal/observability"
	"github.com/voxlate/voxlate/internal/pipeline"
	"github.com/voxlate/voxlate/internal/queue"
	"github.com/voxlate/voxlate/internal/stt"
	"github.com/voxlate/voxlate/internal/translate"
	"github.com/voxlate/voxlate/internal/tts"
)

type Router struct {
	mux     *chi.Mux
	db      *pgxpool.Pool
	redis   *redis.Client
	cfg     *config.Config
	queue   *queue.Client
	metrics *observability.Metrics
}

// NewRouter wires the service. db, rdb and q may be nil; the affected
// features degrade instead of failing startup.
func NewRouter(db *pgxpool.Pool, rdb *redis.Client, q *queue.Client, metrics *observability.Metrics, cfg *config.Config) *Router {
	return &Router{
		mux:     chi.NewRouter(),
		db:      db,
		redis:   rdb,
		cfg:     cfg,
		queue:   q,
		metrics: metrics,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	rl := middleware.NewRateLimiter(20, 40)
	if rt.redis != nil {
		rl.WithRedis(rt.redis)
	}
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	// Adapters and the pipeline
	sttProvider := stt.NewWhisper(rt.cfg.STT)
	translator := translate.NewService(rt.cfg.Translate)
	synthesizer := tts.NewElevenLabs(rt.cfg.TTS)
	pttPipeline := pipeline.New(sttProvider, translator, synthesizer, rt.metrics)

	var usageStore *history.Store
	if rt.db != nil {
		usageStore = history.NewStore(rt.db)
	}

	translateH := handlers.NewTranslateHandler(pttPipeline, rt.queue)
	catalogH := handlers.NewCatalogHandler(synthesizer)
	adminH := handlers.NewAdminHandler(usageStore)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.Auth.JWTSecret != "" {
			jwtMW := auth.NewJWTMiddleware(rt.cfg.Auth.JWTSecret)
			r.Use(jwtMW.Authenticate)
		}

		r.Route("/translate", func(r chi.Router) {
			r.Post("/ptt", translateH.PushToTalk)
			r.Options("/ptt", func(w http.ResponseWriter, r *http.Request) {
				// Handled by the CORS middleware; chi still needs the route.
				w.WriteHeader(http.StatusOK)
			})
		})

		r.Get("/languages", catalogH.Languages)
		r.Get("/voices", catalogH.Voices)
		r.Get("/admin/usage", adminH.Usage)
	})

	return r
}
