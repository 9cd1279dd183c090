// Package main home rental API.
//
// @title           Home Rental API
// @version         1.0
// @description     Property rental marketplace (listings, bookings, notifications).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Rizwanwaseer11/homerental/app/echoServer"
	adminctrl "github.com/Rizwanwaseer11/homerental/app/echoServer/controller/admin"
	authctrl "github.com/Rizwanwaseer11/homerental/app/echoServer/controller/auth"
	bookingctrl "github.com/Rizwanwaseer11/homerental/app/echoServer/controller/booking"
	cartctrl "github.com/Rizwanwaseer11/homerental/app/echoServer/controller/cart"
	notifctrl "github.com/Rizwanwaseer11/homerental/app/echoServer/controller/notification"
	propertyctrl "github.com/Rizwanwaseer11/homerental/app/echoServer/controller/property"
	"github.com/Rizwanwaseer11/homerental/app/echoServer/validation"
	"github.com/Rizwanwaseer11/homerental/config"
	"github.com/Rizwanwaseer11/homerental/mail"
	"github.com/Rizwanwaseer11/homerental/queue"
	bookingrepo "github.com/Rizwanwaseer11/homerental/repository/booking"
	cartrepo "github.com/Rizwanwaseer11/homerental/repository/cart"
	notificationrepo "github.com/Rizwanwaseer11/homerental/repository/notification"
	propertyrepo "github.com/Rizwanwaseer11/homerental/repository/property"
	userrepo "github.com/Rizwanwaseer11/homerental/repository/user"
	adminsvc "github.com/Rizwanwaseer11/homerental/service/admin"
	authsvc "github.com/Rizwanwaseer11/homerental/service/auth"
	bookingsvc "github.com/Rizwanwaseer11/homerental/service/booking"
	cartsvc "github.com/Rizwanwaseer11/homerental/service/cart"
	notificationsvc "github.com/Rizwanwaseer11/homerental/service/notification"
	propertysvc "github.com/Rizwanwaseer11/homerental/service/property"
	"github.com/Rizwanwaseer11/homerental/util/database"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}

	var publisher queue.Publisher = queue.Noop{}
	if cfg.AmqpURL != "" {
		publisher = queue.NewAMQP(cfg.AmqpURL)
	}

	var mailer mail.Sender = mail.Noop{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	// repos
	ur := userrepo.New(db)
	pr := propertyrepo.New(db)
	br := bookingrepo.New(db)
	nr := notificationrepo.New(db)
	cr := cartrepo.New(db)

	// services
	ns := notificationsvc.New(nr)
	as := authsvc.New(ur, cfg.JWTSecret)
	ps := propertysvc.New(pr)
	bs := bookingsvc.New(br, pr, ur, ns, mailer, publisher, log)
	ads := adminsvc.New(pr, ur, br, ns, mailer, log)
	cs := cartsvc.New(cr, pr)

	sweeper := propertysvc.NewSweeper(pr, ur, ns, mailer, log)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	propertyC := &propertyctrl.Controller{Svc: ps, V: v, Log: log, UploadDir: cfg.UploadDir}
	bookingC := &bookingctrl.Controller{Svc: bs, V: v, Log: log}
	notifC := &notifctrl.Controller{Svc: ns, Log: log}
	cartC := &cartctrl.Controller{Svc: cs, Log: log}
	adminC := &adminctrl.Controller{Svc: ads, Log: log}

	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	var rateLimit echo.MiddlewareFunc
	if rdb != nil {
		rateLimit = echoServer.NewTokenBucket(rdb, 100, 100, time.Minute)
	}

	echoServer.Register(e, echoServer.C{
		Auth:         authC,
		Property:     propertyC,
		Booking:      bookingC,
		Notification: notifC,
		Cart:         cartC,
		Admin:        adminC,
		JWTSecret:    cfg.JWTSecret,
		UploadDir:    cfg.UploadDir,
		RateLimit:    rateLimit,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()
	log.Info("server started", "port", cfg.Port, "env", cfg.Env)

	<-ctx.Done()
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
