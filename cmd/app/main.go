package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/writelyhq/writely/internal/commentservice"
	"github.com/writelyhq/writely/internal/common"
	"github.com/writelyhq/writely/internal/dashboardservice"
	"github.com/writelyhq/writely/internal/mailservice"
	"github.com/writelyhq/writely/internal/notificationservice"
	"github.com/writelyhq/writely/internal/postservice"
	"github.com/writelyhq/writely/internal/userservice"
)

type application struct {
	config              *Config
	logger              *slog.Logger
	files               *common.FileStore
	broker              *common.MessageBroker
	userService         *userservice.UserService
	postService         *postservice.PostService
	commentService      *commentservice.CommentService
	notificationService *notificationservice.NotificationService
	dashboardService    *dashboardservice.DashboardService
	mailService         *mailservice.MailService
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupUserExchange(broker)
	if err != nil {
		logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = common.SetupPostExchange(broker)
	if err != nil {
		logger.Error("failed to setup the post exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	userService := userservice.NewUserService(db, broker, cache)

	app := &application{
		config:              cfg,
		logger:              logger,
		files:               common.NewFileStore(cfg.UploadDir),
		broker:              broker,
		userService:         userService,
		postService:         postservice.NewPostService(db, cache, broker),
		commentService:      commentservice.NewCommentService(db),
		notificationService: notificationservice.NewNotificationService(db, cache),
		dashboardService:    dashboardservice.NewDashboardService(db),
		mailService:         mailservice.NewMailService(broker, userService, cfg.Mail.Host, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.Sender, cfg.Mail.Port, logger),
	}
	defer app.mailService.Close()

	go app.mailService.SendActivationEmail()
	go app.mailService.SendNewPostEmail()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
