package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Peauntmore/Meeting-Translator/external/abstractapi"
	"github.com/Peauntmore/Meeting-Translator/external/resend"
	"github.com/Peauntmore/Meeting-Translator/external/smtp"

	"github.com/Peauntmore/Meeting-Translator/internal/config"
	"github.com/Peauntmore/Meeting-Translator/internal/db"
	"github.com/Peauntmore/Meeting-Translator/internal/logging"
	"github.com/Peauntmore/Meeting-Translator/internal/repository"
	"github.com/Peauntmore/Meeting-Translator/internal/services"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewDefault()

	// ======================
	// INFRA
	// ======================
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal(err)
	}
	logger.Info(ctx, "database connected")

	// ======================
	// EXTERNALS
	// ======================
	var mailer services.EmailSender
	if cfg.ResendAPIKey != "" {
		mailer, err = resend.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		mailer = smtp.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	}

	var emailValidator services.EmailValidator
	if cfg.UseEmailReputation {
		emailValidator, err = abstractapi.NewAbstractReputationValidator()
		if err != nil {
			log.Fatal(err)
		}
	} else {
		emailValidator = services.NewLocalValidator()
	}

	// ======================
	// REPOSITORIES & SERVICES
	// ======================
	userRepo := repository.NewUserRepository(pool)
	accountSvc := services.NewAccountService(userRepo, emailValidator, mailer, cfg.SiteURL, logger)

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowCredentials: true,
		}))
	}
	// 100 requests per 15 minutes per IP
	e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStoreWithConfig(
		echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(100.0 / (15 * 60)),
			Burst:     100,
			ExpiresIn: 15 * time.Minute,
		},
	)))

	e.Static("/", "public")

	api := e.Group("/api")
	registerAuthRoutes(api, accountSvc, mailer, cfg.TestEmailTo)

	logger.Info(ctx, "server starting", "port", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
