package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "github.com/zephyros1603/urbanup/internal/configs"
	httpapi "github.com/zephyros1603/urbanup/internal/http"
	"github.com/zephyros1603/urbanup/internal/identity"
	"github.com/zephyros1603/urbanup/internal/realtime"
	repository "github.com/zephyros1603/urbanup/internal/repositories"
	"github.com/zephyros1603/urbanup/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the marketplace HTTP API, realtime hub and notification workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			logrus.Info(".env file not found, using environment variables")
		}

		cfg := config.Load()
		database := config.New(cfg.DatabaseDSN)

		users := repository.NewUserRepository(database)
		tasks := repository.NewTaskRepository(database)
		applications := repository.NewApplicationRepository(database)
		chats := repository.NewChatRepository(database)
		messages := repository.NewMessageRepository(database)
		notifications := repository.NewNotificationRepository(database)

		var presence *realtime.PresenceStore
		if cfg.RedisAddr != "" {
			redisClient := config.NewRedisClient(cfg.RedisAddr)
			defer redisClient.Close()
			presence = realtime.NewPresenceStore(redisClient, time.Duration(cfg.PresenceTTLSeconds)*time.Second)
		} else {
			logrus.Warn("REDIS_HOST not set, presence tracking disabled")
		}

		hub := realtime.NewHub()
		go hub.Run()

		identitySvc := identity.NewRepositoryService(users)
		verifier := identity.NewJWTVerifier(cfg.JWTSecret)

		notifier := services.NewNotificationService(notifications, hub, cfg.NotifyWorkers, cfg.NotifyQueueSize)
		chatSvc := services.NewChatService(chats, messages, tasks, identitySvc, notifier, hub)
		matching := services.NewMatchingService(tasks, applications, identitySvc, chatSvc, notifier)

		e := echo.New()
		e.HideBanner = true
		httpapi.Register(e,
			httpapi.NewTaskHandler(matching),
			httpapi.NewChatHandler(chatSvc, matching),
			httpapi.NewNotificationHandler(notifier),
			realtime.NewHandler(hub, verifier, chatSvc, presence),
			verifier,
			cfg.RateLimit,
		)

		go func() {
			logrus.Infof("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				logrus.Infof("server stopped: %v", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(ctx)
		notifier.Shutdown(ctx)
		hub.Shutdown()

		logrus.Info("HTTP server, notification workers and hub shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
