package main

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"eveningmall/internal/account"
	"eveningmall/internal/basket"
	"eveningmall/internal/catalog"
	"eveningmall/internal/config"
	"eveningmall/internal/content"
	"eveningmall/internal/database"
	"eveningmall/internal/handlers"
	"eveningmall/internal/logger"
	"eveningmall/internal/middleware"
	"eveningmall/internal/order"
	"eveningmall/internal/review"
	"eveningmall/internal/security"
	"eveningmall/internal/sequence"
	"eveningmall/internal/taxonomy"
)

func main() {
	log := logger.Get("main")

	if err := config.Load(); err != nil {
		log.WithError(err).Fatal("config load failed")
	}
	if err := logger.Init(config.AppEnv.Log); err != nil {
		log.WithError(err).Fatal("logger init failed")
	}
	log = logger.Get("main")
	gin.SetMode(config.AppEnv.GinMode)

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	defer database.Disconnect(client)

	db := client.Database(config.AppEnv.DBName)
	log.WithField("db", db.Name()).Info("MongoDB connected")

	if err := database.EnsureIndexes(db); err != nil {
		log.WithError(err).Warn("index setup incomplete")
	}

	sealer, err := security.NewSealer(config.AppEnv.EmailSealKey)
	if err != nil {
		log.WithError(err).Fatal("email sealer init failed")
	}

	ids := sequence.New(db)
	tax := taxonomy.NewResolver(db, ids)
	products := catalog.NewService(db, tax, ids)
	items := basket.NewService(db, products, ids)
	accounts := account.NewService(db, sealer, ids, account.TokenConfig{
		Secret: config.AppEnv.JWTSecret,
		TTL:    config.AppEnv.AccessTokenTTL,
	}, config.AppEnv.BackendURL)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(config.AppEnv.FrontendURL),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.Mount(r, handlers.Services{
		DB:       db,
		Accounts: accounts,
		Products: products,
		Taxonomy: tax,
		Reviews:  review.NewService(db, ids),
		Basket:   items,
		Orders:   order.NewService(db, products, items, ids),
		Content:  content.NewService(db),
	}, handlers.RouteConfig{
		JWTSecret:    config.AppEnv.JWTSecret,
		FrontendURL:  config.AppEnv.FrontendURL,
		QueryTimeout: config.AppEnv.QueryTimeout,
	})

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

// allowedOrigins splits a comma-separated FRONTEND_URL.
func allowedOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
