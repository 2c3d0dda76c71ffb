package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "approveit-backend/internal/adapter/http"
	appmw "approveit-backend/internal/adapter/middleware"
	"approveit-backend/internal/adapter/repository/mysql"
	"approveit-backend/internal/config"
	"approveit-backend/internal/infrastructure/ai"
	"approveit-backend/internal/infrastructure/cache"
	"approveit-backend/internal/infrastructure/db"
	"approveit-backend/internal/infrastructure/email"
	"approveit-backend/internal/infrastructure/meeting"
	"approveit-backend/internal/infrastructure/storage"
	approvalUC "approveit-backend/internal/usecase/approval"
	commentUC "approveit-backend/internal/usecase/comment"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	repo := mysql.NewApprovalRepository(gdb)
	comments := mysql.NewCommentRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	aiClient := ai.NewClient(ai.Config{
		BaseURL:        cfg.AIBaseURL,
		APIKey:         cfg.AIAPIKey,
		EmbeddingModel: cfg.AIEmbeddingModel,
		ChatModel:      cfg.AIChatModel,
	})

	co := approvalUC.Collaborators{
		AppBaseURL: cfg.AppBaseURL,
		Inviter: email.NewService(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		}),
		Embedder: aiClient,
		Meetings: meeting.NewClient(meeting.Config{
			BaseURL:      cfg.MeetingBaseURL,
			TokenURL:     cfg.MeetingTokenURL,
			AccountID:    cfg.MeetingAccountID,
			ClientID:     cfg.MeetingClientID,
			ClientSecret: cfg.MeetingClientSecret,
			HostEmail:    cfg.MeetingHostEmail,
		}),
	}
	if cfg.StorageEndpoint != "" {
		store, err := storage.OpenObjectStore(
			cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey,
			cfg.StorageBucket, cfg.StorageUseSSL,
		)
		if err != nil {
			log.Fatal(err)
		}
		co.Store = store
	}

	approvals := approvalUC.NewUsecase(repo, tx, co)
	discussion := commentUC.NewUsecase(repo, comments, rdb, aiClient)

	h := httpadp.NewHandler()
	ah := httpadp.NewApprovalHandler(approvals)
	ch := httpadp.NewCommentHandler(discussion)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	// routes
	e.GET("/health", h.Health)

	api := e.Group("",
		appmw.Auth([]byte(cfg.JWTSecret)),
		appmw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second),
	)
	api.POST("/approvals", ah.Create)
	api.GET("/approvals", ah.List)
	api.GET("/approvals/search", ah.Search)
	api.GET("/approvals/:approval_id", ah.Get)
	api.PUT("/approvals/:approval_id", ah.Update)
	api.DELETE("/approvals/:approval_id", ah.Delete)
	api.POST("/approvals/:approval_id/approve", ah.Approve)
	api.POST("/approvals/:approval_id/deny", ah.Deny)
	api.POST("/approvals/:approval_id/view", ah.View)
	api.GET("/approvals/:approval_id/summary", ch.Summary)
	api.POST("/approvals/:approval_id/comments", ch.Add)
	api.PUT("/approvals/:approval_id/comments/:comment_id", ch.Edit)
	api.DELETE("/approvals/:approval_id/comments/:comment_id", ch.Delete)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
