package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/primechain/primechain/internal/metrics"
	"github.com/primechain/primechain/internal/node"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// mineResponse mirrors the historical JSON shape of a successful round.
type mineResponse struct {
	Index      uint64         `json:"index"`
	Prime      uint64         `json:"prime"`
	Digits     int            `json:"digits"`
	Duration   string         `json:"duration"`
	Height     int            `json:"height"`
	Stats      mineStats      `json:"stats"`
	Difficulty mineDifficulty `json:"difficulty"`
}

type mineStats struct {
	Candidates          uint64 `json:"candidates"`
	GCDRejected         uint64 `json:"gcd_rejected"`
	HeuristicRejected   uint64 `json:"heuristic_rejected"`
	MillerRabinRejected uint64 `json:"miller_rabin_rejected"`
	Probability         string `json:"probability"`
}

type mineDifficulty struct {
	NLimit    uint64 `json:"n_limit"`
	MinDigits uint32 `json:"min_digits"`
	MinProb   string `json:"min_prob"`
}

// statusCache holds a cached JSON response so dashboard polling doesn't walk
// the chain on every request.
type statusCache struct {
	mu      sync.Mutex
	data    []byte
	expires time.Time
}

const statusCacheTTL = 2 * time.Second

func (c *statusCache) get(dataFunc func() node.Status) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Now().Before(c.expires) {
		return c.data
	}
	buf, err := json.Marshal(dataFunc())
	if err != nil {
		// Serve whatever we had rather than caching an empty payload
		// for the full TTL.
		return c.data
	}
	c.data = buf
	c.expires = time.Now().Add(statusCacheTTL)
	return c.data
}

// NewHandler creates the HTTP surface over a node: the dashboard, the mining
// trigger, the chain view, the status API and prometheus metrics. When
// apiKey is non-empty, /mine and /chain require a matching X-API-Key header.
func NewHandler(n *node.Node, apiKey string, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	cache := &statusCache{}

	// Rounds take around the target time each; a small burst covers
	// impatient clients without letting them queue unbounded work.
	mineLimiter := rate.NewLimiter(1, 4)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Security-Policy",
			"default-src 'none'; script-src 'unsafe-inline'; style-src 'unsafe-inline'; connect-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Write([]byte(dashboardHTML))
	})

	mux.HandleFunc("/banner", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "Proof-of-Prime Blockchain Node")
	})

	mux.Handle("/mine", requireAPIKey(apiKey, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !mineLimiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many mining requests")
			return
		}

		res, err := n.MineRound(r.Context())
		if err != nil {
			logger.Error("mining round failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, mineResponse{
			Index:    res.Block.Index,
			Prime:    res.Block.Prime,
			Digits:   len(strconv.FormatUint(res.Block.Prime, 10)),
			Duration: fmt.Sprintf("%.3fs", res.Duration.Seconds()),
			Height:   res.Height,
			Stats: mineStats{
				Candidates:          res.Stats.Candidates,
				GCDRejected:         res.Stats.GCDRejected,
				HeuristicRejected:   res.Stats.HeuristicRejected,
				MillerRabinRejected: res.Stats.MillerRabinRejected,
				Probability:         fmt.Sprintf("%.5f", res.Stats.Probability),
			},
			Difficulty: mineDifficulty{
				NLimit:    res.Params.NLimit,
				MinDigits: res.Params.MinDigits,
				MinProb:   fmt.Sprintf("%.4f", res.Params.MinProb),
			},
		})
	})))

	mux.Handle("/chain", requireAPIKey(apiKey, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, n.Chain())
	})))

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Write(cache.get(n.Status))
	})

	mux.Handle("/metrics", metrics.Handler())

	return mux
}

// requireAPIKey gates next behind the X-API-Key header. A missing key is one
// failure class (400), a mismatched key another (401). With no secret
// configured the handler passes through unchanged.
func requireAPIKey(secret string, next http.Handler) http.Handler {
	if secret == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			writeError(w, http.StatusBadRequest, "Missing X-API-Key header")
			return
		}
		if key != secret {
			writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
