package site

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const statsSchema = `
CREATE TABLE IF NOT EXISTS page_hits (
    path          TEXT PRIMARY KEY,
    total_hits    INTEGER NOT NULL DEFAULT 1,
    first_seen    DATETIME NOT NULL,
    last_seen     DATETIME NOT NULL
);
`

// PageHits is the hit summary of one page.
type PageHits struct {
	Path      string    `json:"path"`
	TotalHits int       `json:"total_hits"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Stats counts successful page views in a SQL database.
type Stats struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// SetupStatsSchema creates the stats table if it does not exist.
func SetupStatsSchema(db *sql.DB) error {
	_, err := db.Exec(statsSchema)
	return err
}

// NewStats creates a Stats recording into db. The schema must already exist.
func NewStats(db *sql.DB, logger *slog.Logger) *Stats {
	return &Stats{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Record counts one view of path.
func (s *Stats) Record(ctx context.Context, path string) error {
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO page_hits (path, first_seen, last_seen) VALUES (?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET total_hits = total_hits + 1, last_seen = ?
    `, path, now, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert page_hits: %w", err)
	}
	return nil
}

// Top returns up to limit pages ordered by hit count, most viewed first.
func (s *Stats) Top(ctx context.Context, limit int) ([]PageHits, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, total_hits, first_seen, last_seen FROM page_hits ORDER BY total_hits DESC, path ASC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query page_hits: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	results := []PageHits{}
	for rows.Next() {
		var h PageHits
		if err = rows.Scan(&h.Path, &h.TotalHits, &h.FirstSeen, &h.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan page_hits: %w", err)
		}
		results = append(results, h)
	}
	return results, rows.Err()
}

// Middleware records a hit for every successful GET of one of routes.
// Recording failures are logged and never affect the response.
func (s *Stats) Middleware(routes []string) func(http.Handler) http.Handler {
	tracked := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		tracked[route] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			if r.Method != http.MethodGet || sw.Status() != http.StatusOK {
				return
			}
			if _, ok := tracked[r.URL.Path]; !ok {
				return
			}
			if err := s.Record(r.Context(), r.URL.Path); err != nil {
				s.logger.Error("Failed to record page hit", "path", r.URL.Path, "error", err)
			}
		})
	}
}

func (s *Stats) handleTop(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 100
	}
	results, err := s.Top(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to query top pages", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, results)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("Failed to encode JSON response", "error", err)
		}
	}
}
