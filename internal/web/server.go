package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"reviewer/internal/logger"
	"reviewer/internal/repository/sqlite"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetupRoutes registers the status endpoints: a websocket live feed of
// decisions, review statistics from the index, and a health check.
func SetupRoutes(hub *Hub, reviews *sqlite.ReviewRepository, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/live", liveFeedHandler(hub, log))
	mux.HandleFunc("/api/stats", statsHandler(reviews, log))
	mux.HandleFunc("/api/reviews", recentReviewsHandler(reviews, log))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

func liveFeedHandler(hub *Hub, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		defer connection.Close()

		hub.Register(connection)
		defer hub.Unregister(connection)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				break
			}
		}
	}
}

func statsHandler(reviews *sqlite.ReviewRepository, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := reviews.CountByOutcome()
		if err != nil {
			log.Error("Failed to load review stats: %v", err)
			http.Error(w, "failed to load stats", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(counts)
	}
}

func recentReviewsHandler(reviews *sqlite.ReviewRepository, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}

		recent, err := reviews.RecentReviews(limit)
		if err != nil {
			log.Error("Failed to load recent reviews: %v", err)
			http.Error(w, "failed to load reviews", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(recent)
	}
}
