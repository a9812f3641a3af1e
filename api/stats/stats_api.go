package stats

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"orderdesk/api"
	"orderdesk/config"
	"orderdesk/core/auth"
	"orderdesk/core/cache"
	"orderdesk/core/log"
	orderRepo "orderdesk/model/repository/order"
)

// statsTTL bounds staleness of dashboard numbers.
const statsTTL = 60 // seconds

func init() {
	api.RegisterModule(RegisterStatsRoutes)
}

func RegisterStatsRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/stats")
	repo := orderRepo.NewOrderRepository(db)

	// GET /api/stats/dashboard – today's order counts and delivered revenue
	g.GET("/dashboard", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		key := fmt.Sprintf("stats:dashboard:%d:%s", t.ID, time.Now().Format("2006-01-02"))
		if cached, ok := getCached(key); ok {
			return c.JSONBlob(http.StatusOK, cached)
		}

		stats, err := repo.GetDashboardStats(t.ID, time.Now())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load stats"})
		}
		putCached(key, stats)
		return c.JSON(http.StatusOK, stats)
	})

	// GET /api/stats/weekly – per-day series for the last 7 days
	g.GET("/weekly", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		key := fmt.Sprintf("stats:weekly:%d:%s", t.ID, time.Now().Format("2006-01-02"))
		if cached, ok := getCached(key); ok {
			return c.JSONBlob(http.StatusOK, cached)
		}

		series, err := repo.GetWeeklyStats(t.ID, time.Now())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load stats"})
		}
		putCached(key, series)
		return c.JSON(http.StatusOK, series)
	})
}

// getCached checks Redis first, then the in-process cache. Both tiers hold
// marshalled JSON so a hit is served without touching the database.
func getCached(key string) ([]byte, bool) {
	if config.RedisClient != nil {
		if raw, err := config.RedisClient.Get(config.RedisCtx(), key).Bytes(); err == nil {
			return raw, true
		}
	}
	if v, ok := cache.GetInstance().Get(key); ok {
		if raw, isBytes := v.([]byte); isBytes {
			return raw, true
		}
	}
	return nil, false
}

func putCached(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if config.RedisClient != nil {
		if err := config.RedisClient.Set(config.RedisCtx(), key, raw, statsTTL*time.Second).Err(); err != nil {
			log.L().Warnw("redis stats cache write failed", "key", key, "error", err)
		}
	}
	cache.GetInstance().Set(key, raw, statsTTL)
}
