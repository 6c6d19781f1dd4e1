package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lilo-planner/internal/assistant"
	"lilo-planner/internal/bot"
	"lilo-planner/internal/config"
	"lilo-planner/internal/repository"
	"lilo-planner/internal/server"
	"lilo-planner/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	taskSvc := service.NewTaskService(taskRepo, cfg.MaxRecurringOccurrences)
	agendaSvc := service.NewAgendaService(taskRepo)

	oracle := assistant.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	bridge := assistant.NewBridge(oracle, taskSvc)

	if cfg.TelegramToken != "" {
		telegramBot, err := bot.New(cfg.TelegramToken, userRepo, taskSvc, agendaSvc, bridge)
		if err != nil {
			log.Fatalf("bot: %v", err)
		}

		scheduler := service.NewSchedulerService(time.Local)
		if _, err := scheduler.ScheduleDaily(cfg.AgendaTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendDailyAgendas(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("agenda broadcast: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule agenda: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()

		go func() {
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("bot stopped with error: %v", err)
			}
		}()
	}

	api := server.New(userRepo, taskSvc, bridge, []byte(cfg.JWTSecret))
	httpServer := &http.Server{Addr: cfg.Addr, Handler: api.Handler()}

	go func() {
		log.Printf("[info] http server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}
