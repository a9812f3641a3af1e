//go:build !cli
// +build !cli

package main

import (
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"orderdesk/api"
	_ "orderdesk/api/graphql"
	_ "orderdesk/api/order"
	_ "orderdesk/api/product"
	_ "orderdesk/api/shopify"
	_ "orderdesk/api/stats"
	"orderdesk/config"
	"orderdesk/core/auth"
	"orderdesk/cron"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()

	config.InitRedis()
	redisStatus := "Redis not configured, caching disabled."
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(config.RedisCtx()).Err(); err == nil {
			redisStatus = "Redis connection successful."
		} else {
			config.RedisClient = nil
			redisStatus = "Redis configured but not reachable, caching disabled."
		}
	}
	log.Println(redisStatus)

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Println("Database connection successful.")

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	e.Use(auth.Middleware(db))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, echo.Map{"status": "ok"})
	})

	apiGroup := e.Group("/api")
	api.ApplyModules(apiGroup, db)
	api.ApplyRoutes(e, db)

	if os.Getenv("SHOPIFY_SYNC_ENABLED") != "false" {
		scheduler, err := cron.StartCron(db)
		if err != nil {
			log.Fatalf("cron scheduler failed: %v", err)
		}
		defer scheduler.Stop()
	}

	// ASCII banner on start (random font each run)
	fonts := []string{"banner", "big", "slant", "standard", "small", "shadow", "doom"}
	fig := figure.NewFigure("OrderDesk ->", fonts[rand.Intn(len(fonts))], true)
	fig.Print()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
