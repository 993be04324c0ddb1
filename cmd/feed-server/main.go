package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/reelworks/feedcache/internal/catalog"
	"github.com/reelworks/feedcache/internal/recsys"
	"github.com/reelworks/feedcache/pkg/cache"
	"github.com/reelworks/feedcache/pkg/feed"
	"github.com/reelworks/feedcache/pkg/logging"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "false") == "true",
		Output: os.Stderr,
	})

	redisURL := getEnv("REDIS_URL", "localhost:6379")
	databaseURL := getEnv("DATABASE_URL", "postgres://localhost:5432/feedcache")
	recsysURL := getEnv("RECSYS_URL", "http://localhost:8090")
	port := getEnv("PORT", "8080")

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("addr", redisURL).Msg("Connected to Redis")

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Postgres pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	logger.Info().Msg("Connected to Postgres")

	engine, err := recsys.NewClient(recsysURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create recommendation client")
	}

	cfg := feed.DefaultConfig()
	store := cache.NewStore(redisClient, 0)
	tracker := cache.NewRecentTracker(redisClient, cfg.RecentWindow, 0)
	details := catalog.NewContentDetails(pool)

	svc, err := feed.New(store, engine, tracker, details, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create feed service")
	}
	defer svc.Close()

	r := chi.NewRouter()
	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(redisClient))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/v1/feed", feedHandler(svc))
	r.Get("/v1/feed/category/{category}", categoryFeedHandler(svc))
	r.Delete("/v1/feed/{ownerID}", clearHandler(svc))
	r.Post("/v1/views", viewsHandler(tracker))

	addr := ":" + port
	logger.Info().Str("addr", addr).Msg("Starting feed server")

	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// ownerFromRequest reads the owner identity from the owner_id query
// parameter. Absent means an unauthenticated request on the shared
// anonymous surface.
func ownerFromRequest(r *http.Request) (cache.Owner, error) {
	raw := r.URL.Query().Get("owner_id")
	if raw == "" {
		return cache.Anonymous(), nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return cache.Owner{}, fmt.Errorf("invalid owner_id: %w", err)
	}
	return cache.UserOwner(id), nil
}

func feedHandler(svc *feed.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		q := r.URL.Query()
		page, err := svc.GetPage(r.Context(), owner,
			q.Get("cursor"), intParam(q.Get("limit")), getLanguage(q.Get("lang")))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, page)
	}
}

func categoryFeedHandler(svc *feed.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		q := r.URL.Query()
		page, err := svc.GetCategoryPage(r.Context(), owner,
			q.Get("cursor"), intParam(q.Get("limit")), getLanguage(q.Get("lang")),
			chi.URLParam(r, "category"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, page)
	}
}

func clearHandler(svc *feed.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "ownerID"))
		if err != nil {
			http.Error(w, "invalid owner id", http.StatusBadRequest)
			return
		}

		deleted, err := svc.ClearOwner(r.Context(), cache.UserOwner(id))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, map[string]int64{"deleted": deleted})
	}
}

// viewsRequest marks content as seen so future generations exclude it.
type viewsRequest struct {
	OwnerID    string   `json:"owner_id"`
	ContentIDs []string `json:"content_ids"`
}

func viewsHandler(tracker *cache.RecentTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req viewsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		id, err := uuid.Parse(req.OwnerID)
		if err != nil {
			http.Error(w, "invalid owner id", http.StatusBadRequest)
			return
		}

		if err := tracker.Record(r.Context(), cache.UserOwner(id), req.ContentIDs...); err != nil {
			writeServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case err == feed.ErrLanguageRequired || err == feed.ErrCategoryRequired:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		// Store or engine failure: the page request fails, there is no
		// silent empty-feed fallback.
		http.Error(w, "feed unavailable", http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func intParam(s string) int {
	n := 0
	fmt.Sscanf(s, "%d", &n)
	return n
}

func getLanguage(lang string) string {
	if lang == "" {
		return "en"
	}
	return lang
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
