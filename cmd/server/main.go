package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/thomasjvidal/teste-backend-pleno/internal/cache"
	"github.com/thomasjvidal/teste-backend-pleno/internal/config"
	"github.com/thomasjvidal/teste-backend-pleno/internal/handler"
	"github.com/thomasjvidal/teste-backend-pleno/internal/logging"
	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
	"github.com/thomasjvidal/teste-backend-pleno/internal/service"
	"github.com/thomasjvidal/teste-backend-pleno/pkg/auth"
	"github.com/thomasjvidal/teste-backend-pleno/pkg/viacep"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	// Redis は任意（未設定なら郵便番号キャッシュなし・失効リストはプロセス内）
	var lookup viacep.Client = viacep.NewClient(cfg.ViaCEP.BaseURL, cfg.ViaCEP.Timeout)
	var denylist auth.Denylist = auth.NewMemoryDenylist()
	deps := []handler.Dependency{{Name: "database", DB: pool}}
	if cfg.Redis.Enabled() {
		rc, err := cache.New(ctx, cfg.Redis.URL)
		if err != nil {
			logging.Fatal("failed to connect to redis", "error", err)
		}
		defer rc.Close()
		lookup = viacep.NewCachingClient(lookup, rc, cfg.ViaCEP.CacheTTL)
		denylist = cache.NewDenylist(rc)
		deps = append(deps, handler.Dependency{Name: "redis", DB: rc})
		slog.Info("redis enabled", "postal_code_cache_ttl", cfg.ViaCEP.CacheTTL.String())
	}

	userRepo := repository.NewPgUserRepository(pool)
	contactRepo := repository.NewPgContactRepository(pool)
	addressRepo := repository.NewPgAddressRepository(pool)
	phoneRepo := repository.NewPgPhoneRepository(pool)
	emailRepo := repository.NewPgEmailRepository(pool)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	authService := service.NewAuthService(userRepo, tokens, denylist)
	contactService := service.NewContactService(
		repository.NewPgTxScope(pool),
		contactRepo,
		service.NewAddressEnricher(lookup, addressRepo, cfg.ViaCEP.Timeout),
		service.NewChildReplacer[model.Phone](phoneRepo, "phones"),
		service.NewChildReplacer[model.Email](emailRepo, "emails"),
	)

	h := handler.New(cfg.FrontendURL, deps...)
	authHandler := handler.NewAuthHandler(authService)
	contactHandler := handler.NewContactHandler(contactService)

	wrapAuth := auth.RequireAuth(tokens, denylist)
	adminOnly := func(next http.HandlerFunc) http.Handler {
		return wrapAuth(auth.RequireRole(model.RoleAdmin)(next))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.Handle("POST /api/logout", wrapAuth(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/me", wrapAuth(http.HandlerFunc(authHandler.Me)))

	// 連絡先 API（更新・削除は ADMIN のみ）
	mux.Handle("GET /api/contacts", wrapAuth(http.HandlerFunc(contactHandler.List)))
	mux.Handle("POST /api/contacts", wrapAuth(http.HandlerFunc(contactHandler.Create)))
	mux.Handle("GET /api/contacts/{id}", wrapAuth(http.HandlerFunc(contactHandler.Show)))
	mux.Handle("PUT /api/contacts/{id}", adminOnly(contactHandler.Update))
	mux.Handle("DELETE /api/contacts/{id}", adminOnly(contactHandler.Delete))

	limiter := handler.NewRateLimiter(cfg.HTTP.RateLimitPerMinute, cfg.HTTP.TrustedProxies)
	defer limiter.Stop()

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.RequestLogger(handler.SecurityHeaders(h.CORS(limiter.Middleware(mux)))),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
