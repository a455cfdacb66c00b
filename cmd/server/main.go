package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/bookmarket/internal/checkout"
	"github.com/iliyamo/bookmarket/internal/config"
	"github.com/iliyamo/bookmarket/internal/database"
	"github.com/iliyamo/bookmarket/internal/handler"
	"github.com/iliyamo/bookmarket/internal/middleware"
	"github.com/iliyamo/bookmarket/internal/payment"
	"github.com/iliyamo/bookmarket/internal/queue"
	"github.com/iliyamo/bookmarket/internal/repository"
	"github.com/iliyamo/bookmarket/internal/router"
	queue_publisher "github.com/iliyamo/bookmarket/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.InitSchema(db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	listings := repository.NewListingRepo(db)
	orders := repository.NewOrderRepo(db)
	submissions := repository.NewSubmissionRepo(db)
	blogs := repository.NewBlogRepo(db)
	users := repository.NewUserRepo(db)

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	reconciler := checkout.NewReconciler(gateway, listings, orders)
	reconciler.Publish = queue_publisher.PublishOrderCompleted

	authH := handler.NewAuthHandler(cfg, users)
	contentH := handler.NewContentHandler(listings)
	productH := handler.NewProductHandler(listings)
	blogH := handler.NewBlogHandler(blogs)
	submissionH := handler.NewSubmissionHandler(submissions)
	orderH := handler.NewOrderHandler(orders)
	checkoutH := handler.NewCheckoutHandler(listings, gateway, reconciler, cfg.SiteOrigin)
	webhookH := handler.NewWebhookHandler(gateway, reconciler)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Catalog reads go through the Redis cache when it is reachable; the
	// service degrades to uncached reads otherwise.
	var cacheMW echo.MiddlewareFunc
	cacheCfg := config.LoadCacheConfig()
	if rdb := config.NewRedisClient(); rdb != nil && cacheCfg.Enabled {
		cacheMW = middleware.NewRedisCache(cacheCfg, rdb)
		log.Printf("response cache enabled (ttl=%s)", cacheCfg.TTL)
	}

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCatalog(e, contentH, productH, blogH, cacheMW)
	router.RegisterCheckout(e, checkoutH, webhookH)
	router.RegisterSubmissions(e, submissionH, cfg.JWTSecret)
	router.RegisterOrders(e, orderH, cfg.JWTSecret)
	router.RegisterAdmin(e, contentH, productH, blogH, cfg.JWTSecret)

	// Order notifications are written to logs/orders.log by a background
	// consumer. It reconnects on its own; a missing broker only disables
	// notifications.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
