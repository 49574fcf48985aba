package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parklot/internal/api"
	"parklot/internal/api/handler"
	"parklot/internal/api/middleware"
	"parklot/internal/config"
	"parklot/internal/repository"
	"parklot/internal/repository/memory"
	"parklot/internal/repository/postgresql"
	"parklot/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	var spotRepo repository.SpotRepository
	var ticketRepo repository.TicketRepository
	var userRepo repository.UserRepository

	switch cfg.StoreBackend {
	case "memory":
		log.Warn().Msg("using in-memory store; all state is lost on restart")
		spotRepo = memory.NewSpotRepository()
		ticketRepo = memory.NewTicketRepository()
		userRepo = memory.NewUserRepository()
	default:
		db, err := postgresql.NewDB(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer db.Close()
		log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("database connected")

		spotRepo = postgresql.NewPgSpotRepository(db)
		ticketRepo = postgresql.NewPgTicketRepository(db)
		userRepo = postgresql.NewPgUserRepository(db)
	}

	// The board is derived once from a full scan here; afterwards the
	// allocation and admin services keep it in step incrementally.
	board, err := service.NewDisplayBoardFromStore(context.Background(), spotRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize display board")
	}

	wsManager := handler.NewWebSocketManager()
	go wsManager.Start()
	board.SetNotifier(wsManager.BroadcastBoard)

	allocationService := service.NewAllocationService(spotRepo, board)
	ticketService := service.NewTicketService(ticketRepo, allocationService)
	adminService := service.NewAdminService(spotRepo, allocationService, board)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	router := api.SetupRouter(authService, allocationService, ticketService, adminService, authMiddleware, wsManager)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
