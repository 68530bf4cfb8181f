package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/arjun/auth-dashboard/internal/auth"
	"github.com/arjun/auth-dashboard/internal/config"
	"github.com/arjun/auth-dashboard/internal/middleware"
	"github.com/arjun/auth-dashboard/internal/models"
	"github.com/arjun/auth-dashboard/internal/profile"
	"github.com/arjun/auth-dashboard/internal/store"
	"github.com/arjun/auth-dashboard/internal/token"
)

// userStore is the full persistence surface both handler packages draw from.
type userStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetAvatarKey(ctx context.Context, id, key string) error
}

// maxPortAttempts bounds the bind-conflict retry loop.
const maxPortAttempts = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx := context.Background()

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.JWTSecret == "your_jwt_secret" && !cfg.IsDevelopment() {
		logger.Warn("JWT_SECRET not set, falling back to the default signing secret")
	}

	// ── User store ───────────────────────────────────────────
	var users userStore
	switch cfg.StoreDriver {
	case "postgres":
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("postgres connect", zap.Error(err))
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			logger.Fatal("postgres migrate", zap.Error(err))
		}
		users = pgStore
	case "mongo":
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			logger.Fatal("mongo connect", zap.Error(err))
		}
		defer mongoClient.Disconnect(ctx)
		mongoStore, err := store.NewMongoStore(ctx, mongoClient.Database(cfg.MongoDB))
		if err != nil {
			logger.Fatal("mongo store", zap.Error(err))
		}
		users = mongoStore
	default:
		logger.Fatal("unknown store driver", zap.String("driver", cfg.StoreDriver))
	}

	// ── Redis profile cache (optional) ───────────────────────
	var cache auth.ProfileCache
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		cache = store.NewProfileCache(rdb)
	}

	// ── Tokens + handlers ────────────────────────────────────
	tokens := token.NewManager(cfg.JWTSecret)
	authHandler := auth.NewHandler(users, tokens, cache, logger, cfg.IsDevelopment())

	// ── MinIO avatar store (optional) ────────────────────────
	var profileHandler *profile.Handler
	if cfg.Minio.Endpoint != "" {
		minioStore, err := store.NewMinioStore(
			ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey,
			cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.Fatal("minio connect", zap.Error(err))
		}
		profileHandler = profile.NewHandler(users, minioStore, logger)
	}

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Auth API is running"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(middleware.RequireAuth(tokens)).Get("/me", authHandler.Me)
	})

	if profileHandler != nil {
		r.Route("/api/profile", func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens))
			r.Put("/avatar", profileHandler.UploadAvatar)
			r.Get("/avatar", profileHandler.GetAvatar)
		})
	}

	// ── Server ───────────────────────────────────────────────
	ln, port, err := listenWithFallback(cfg.Port, logger)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	srv := &http.Server{
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.Int("port", port))
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}

// listenWithFallback binds the configured port, moving to the next one
// when it is already taken.
func listenWithFallback(port int, logger *zap.Logger) (net.Listener, int, error) {
	for i := 0; i < maxPortAttempts; i++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			return ln, port, nil
		}
		if errors.Is(err, syscall.EADDRINUSE) {
			logger.Warn("port is busy, trying next", zap.Int("port", port))
			port++
			continue
		}
		return nil, 0, err
	}
	return nil, 0, fmt.Errorf("no free port after %d attempts", maxPortAttempts)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
