package bootstrap

import (
	"context"
	"log"
	"time"

	"tumaini-be/internal/config"
	"tumaini-be/internal/controller"
	"tumaini-be/internal/gateway"
	"tumaini-be/internal/handler"
	"tumaini-be/internal/pkg/logger"
	"tumaini-be/internal/pkg/mailer"
	"tumaini-be/internal/pkg/serverutils"
	"tumaini-be/internal/repository/implementation"
	"tumaini-be/internal/service"
	"tumaini-be/internal/websocket"

	pktNats "tumaini-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	TopicDonationOutcome = "donation.outcome"
	TopicPledgeLifecycle = "pledge.lifecycle"
)

type Container struct {
	// Controllers
	DonationController controller.IDonationController
	PledgeController   controller.IPledgeController
	ContentController  controller.IContentController
	AdminController    controller.IAdminController

	// Background services (exposed for main.go to run)
	NotifyService service.INotifyService
	PledgeService service.IPledgeService

	// WebSockets
	FeedHandler  *handler.FeedHandler
	WebSocketHub *websocket.Hub

	// Middleware built from infra the container owns
	DonationRateLimiter fiber.Handler
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.SMTP.AdminEmail,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub for the admin live feed
	wsLogger := logger.NewIsolatedLogger("logs/feed.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Repositories
	donationRepo := implementation.NewDonationRepository(db)
	pledgeRepo := implementation.NewPledgeRepository(db)
	tierRepo := implementation.NewTierRepository(db)
	adminRepo := implementation.NewAdminRepository(db)

	// 4. Payment rails
	snapGateway := gateway.NewSnapGateway(cfg.Midtrans, cfg.App.ClientURL)
	mpesaGateway := gateway.NewMpesaGateway(cfg.Mpesa)
	bankGateway := gateway.NewBankGateway(cfg.Bank)
	gateways := gateway.NewRegistry(snapGateway, mpesaGateway, bankGateway)

	// 5. Services
	outcomePublisher := service.NewPublisherService(TopicDonationOutcome, pubSub)
	lifecyclePublisher := service.NewPublisherService(TopicPledgeLifecycle, pubSub)

	ledgerService := service.NewLedgerService(donationRepo)
	donationService := service.NewDonationService(ledgerService, gateways, sysLogger)
	reconcileService := service.NewReconcileService(
		ledgerService,
		gateways,
		outcomePublisher,
		sysLogger,
		cfg.Reconcile.FallbackWindow,
		time.Duration(cfg.Reconcile.VerifyTimeoutSeconds)*time.Second,
	)
	pledgeService := service.NewPledgeService(pledgeRepo, lifecyclePublisher, sysLogger)
	contentService := service.NewContentService(tierRepo, donationRepo, pledgeRepo, sysLogger)
	adminService := service.NewAdminService(adminRepo, ledgerService, outcomePublisher, sysLogger)

	notifyService := service.NewNotifyService(
		pubSub,
		TopicDonationOutcome,
		TopicPledgeLifecycle,
		emailService,
		natsPub,
		wsHub,
		sysLogger,
	)

	feedHandler := handler.NewFeedHandler(wsHub, wsLogger)

	rateLimiter := serverutils.RateLimitMiddleware(rdb, "donate", cfg.Reconcile.InitiateRatePerMinute)

	return &Container{
		DonationController: controller.NewDonationController(donationService, reconcileService, snapGateway),
		PledgeController:   controller.NewPledgeController(pledgeService),
		ContentController:  controller.NewContentController(contentService),
		AdminController:    controller.NewAdminController(adminService, pledgeService, sysLogger),

		NotifyService: notifyService,
		PledgeService: pledgeService,

		FeedHandler:  feedHandler,
		WebSocketHub: wsHub,

		DonationRateLimiter: rateLimiter,
	}
}
