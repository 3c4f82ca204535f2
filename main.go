package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/lncalendar/lncalendar/config"
	"github.com/lncalendar/lncalendar/controllers"
	"github.com/lncalendar/lncalendar/cron"
	"github.com/lncalendar/lncalendar/db"
	"github.com/lncalendar/lncalendar/lightning"
	"github.com/lncalendar/lncalendar/models"
	"github.com/lncalendar/lncalendar/nostr"
	"github.com/lncalendar/lncalendar/payments"
	"github.com/lncalendar/lncalendar/rates"
	"github.com/lncalendar/lncalendar/routes"
	"github.com/lncalendar/lncalendar/utils"
)

func main() {
	cfg := config.Load()

	db.Init(cfg.DatabaseURL)
	db.Migrate()
	seedWallet(cfg)

	redisClient := rates.InitRedis(cfg.RedisAddr)
	converter := rates.NewHostConverter(cfg.LNbitsURL, redisClient)
	ln := lightning.NewHTTPClient(cfg.LNbitsURL, cfg.LNbitsAPIKey)
	notifier := nostr.NewNotifier(db.DB)
	mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)

	svc := payments.NewService(db.DB, ln, converter).
		WithNotifier(notifier).
		WithMailer(mailer)
	svc.StrictSlotCheck = cfg.StrictSlotCheck

	controllers.Setup(svc, notifier)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener := payments.NewListener(svc)
	go listener.Run(ctx)
	scheduler := cron.StartCronJobs(svc)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("lncalendar is up")
	})
	routes.SetupScheduleRoutes(app)
	routes.SetupAppointmentRoutes(app)
	routes.SetupUnavailableRoutes(app)
	routes.SetupSettingsRoutes(app, cfg.AdminKey)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		scheduler.Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// seedWallet creates a default wallet on first start so the API keys from the
// environment work out of the box.
func seedWallet(cfg config.Config) {
	if cfg.WalletAdminKey == "" || cfg.WalletInvoiceKey == "" {
		return
	}

	var count int64
	if err := db.DB.Model(&models.Wallet{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	wallet := models.Wallet{
		ID:       utils.ShortID(),
		UserID:   utils.ShortID(),
		Name:     "default",
		AdminKey: cfg.WalletAdminKey,
		InKey:    cfg.WalletInvoiceKey,
	}
	if err := db.DB.Create(&wallet).Error; err != nil {
		log.Printf("Failed to seed default wallet: %v", err)
		return
	}
	log.Printf("Seeded default wallet %s", wallet.ID)
}
