package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leon37/KindKeeper/internal/api"
	"github.com/leon37/KindKeeper/internal/api/controller"
	"github.com/leon37/KindKeeper/internal/chatstore"
	"github.com/leon37/KindKeeper/internal/config"
	"github.com/leon37/KindKeeper/internal/events"
	"github.com/leon37/KindKeeper/internal/events/kafka"
	"github.com/leon37/KindKeeper/internal/infrastructure/database"
	"github.com/leon37/KindKeeper/internal/infrastructure/embedding"
	"github.com/leon37/KindKeeper/internal/infrastructure/llm"
	"github.com/leon37/KindKeeper/internal/infrastructure/ocr"
	"github.com/leon37/KindKeeper/internal/infrastructure/speech"
	"github.com/leon37/KindKeeper/internal/infrastructure/vectordb"
	"github.com/leon37/KindKeeper/internal/repository"
	"github.com/leon37/KindKeeper/internal/service"
)

// @title           KindKeeper API
// @version         1.0
// @description     语音记账、收入、提醒和保姆出勤助手

// @host            localhost:8080
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 请在输入框中输入 "Bearer <token>" (注意 Bearer 和 token 之间有空格)

func main() {
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	// JSONHandler 方便日志采集，AddSource 显示文件名和行号
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     conf.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)
	slog.Info("KindKeeper 系统启动中...")

	// 1. Infra
	db, err := database.Open(conf.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	chatDB, err := database.OpenChat(conf.Chat.Path)
	if err != nil {
		log.Fatalf("Failed to open chat history: %v", err)
	}

	bus := events.NewBus()

	if len(conf.Kafka.Brokers) > 0 {
		publisher := kafka.NewPublisher(conf.Kafka.Brokers, conf.Kafka.Topic)
		defer publisher.Close()
		bus.Subscribe(publisher.Forward(events.EntryAdded))
		slog.Info("kafka forwarding enabled", "topic", conf.Kafka.Topic)
	}

	var (
		embedder embedding.Provider
		memRepo  repository.MemoryRepo
	)
	if conf.Qdrant.Host != "" {
		vecClient, err := vectordb.NewQdrantClient(conf.Qdrant)
		if err != nil {
			log.Fatalf("Failed to init Vector DB: %v", err)
		}
		defer vecClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = vecClient.InitCollection(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to init Qdrant collection: %v", err)
		}
		embedder = embedding.NewOpenAIClient(conf.Embedder)
		memRepo = vectordb.NewQdrantRepository(vecClient)
	}
	memory := service.NewMemoryService(embedder, memRepo)
	bus.Subscribe(memory.Index)

	var reader ocr.Reader
	if conf.OCR.Enabled {
		reader = ocr.NewTesseractReader(conf.OCR.Language)
	}

	speakers := speech.NewRegistry(speech.NewOpenAIEngine(conf.OpenAI, conf.Speech.Model), speech.SettingsFrom(conf.Speech))
	config.Watch(func(c *config.Config) {
		speakers.Reload(c.Speech)
	})

	// 2. Layer Wiring (依赖注入)
	gateway := repository.NewGateway(db)
	history := chatstore.New(chatDB)
	messages := service.NewMessageService(llm.NewIntentClient(conf.OpenAI), gateway, history, bus)
	chat := service.NewChatService(messages, history, reader)
	voice := service.NewVoiceService(llm.NewWhisperClient(conf.Whisper, conf.Speech.Language), chat)

	userRepo := repository.NewUserRepository(db)
	ctrls := api.Controllers{
		Auth:    controller.NewAuthController(service.NewAuthService(userRepo, gateway.Profiles, conf.JWT)),
		Chat:    controller.NewChatController(chat),
		Voice:   controller.NewVoiceController(voice, speakers),
		Entry:   controller.NewEntryController(bus, service.NewLedgerService(gateway), memory),
		Ledger:  controller.NewLedgerController(service.NewLedgerService(gateway), service.NewExportService(gateway)),
		Profile: controller.NewProfileController(service.NewProfileService(userRepo, gateway.Profiles)),
	}

	// 3. Server
	gin.SetMode(conf.Server.Mode)
	r := gin.Default()
	api.RegisterRoutes(r, conf.JWT.Secret, conf.Server.AllowedOrigins, ctrls)

	srv := &http.Server{Addr: conf.Server.Port, Handler: r}
	go func() {
		slog.Info("KindKeeper Web Server 启动中", "port", conf.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("服务器启动失败", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "err", err)
	}
	memory.Wait()
}
