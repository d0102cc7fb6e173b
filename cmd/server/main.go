package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-access-control/internal/admission"
	"github.com/iliyamo/facility-access-control/internal/config"
	"github.com/iliyamo/facility-access-control/internal/database"
	"github.com/iliyamo/facility-access-control/internal/handler"
	"github.com/iliyamo/facility-access-control/internal/middleware"
	"github.com/iliyamo/facility-access-control/internal/queue"
	"github.com/iliyamo/facility-access-control/internal/repository"
	"github.com/iliyamo/facility-access-control/internal/router"
	queue_publisher "github.com/iliyamo/facility-access-control/internal/service"
	"github.com/iliyamo/facility-access-control/internal/waitlist"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is an accelerator, not a dependency: a nil client switches the
	// rate limiter and response cache into pass-through mode.
	rdb := config.NewRedisClient()

	facilities := repository.NewFacilityRepo(db)
	slots := repository.NewSlotRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	attendance := repository.NewAttendanceRepo(db)
	tokens := repository.NewTokenRepo(db)
	waitlistRepo := repository.NewWaitlistRepo(db)

	notifier := queue_publisher.BrokerNotifier{}

	opts := admission.Options{
		Resolver: admission.ResolverOptions{
			Grace:       cfg.GraceWindow,
			RejectEarly: cfg.RejectEarly,
		},
		PrivilegedTiers: admission.NewTierSet(cfg.PrivilegedTiers...),
		StorageTimeout:  cfg.StorageTimeout,
		CommitRetries:   uint64(cfg.CommitRetries),
	}

	// One controller per facility, built once at startup.  Facilities are
	// provisioned out of band; adding one is a restart, which matches how
	// entrance hardware is rolled out.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	all, err := facilities.List(ctx)
	cancel()
	if err != nil {
		log.Fatalf("facility catalog: %v", err)
	}
	controllers := make([]*admission.Controller, 0, len(all))
	for _, f := range all {
		controllers = append(controllers, admission.NewController(f, slots, subs, attendance, tokens, notifier, opts))
	}
	accessRouter := admission.NewRouter(tokens, controllers...)

	manager := waitlist.NewManager(waitlistRepo, notifier, cfg.StorageTimeout)

	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterHealth(e)
	router.RegisterCatalog(e,
		handler.NewCatalogHandler(facilities, slots),
		middleware.NewCatalogCache(config.LoadCacheConfig(), rdb),
	)
	router.RegisterAccess(e,
		handler.NewScanHandler(accessRouter),
		handler.NewWaitlistHandler(manager),
		handler.NewAttendanceHandler(attendance),
		cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, facilities=%d)", addr, cfg.Env, len(controllers))
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
