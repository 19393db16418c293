package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridmark/tictactoe-backend/internal/config"
	"github.com/gridmark/tictactoe-backend/internal/engine"
	"github.com/gridmark/tictactoe-backend/internal/repository"
	"github.com/gridmark/tictactoe-backend/internal/repository/storage"
	"github.com/gridmark/tictactoe-backend/internal/usecase"
	"github.com/gridmark/tictactoe-backend/transport/rest"
	"github.com/gridmark/tictactoe-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - wires the dependencies and runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	gameRepo := repository.NewGameRepository(redisStorage.Connection)

	moveEngine := buildEngine(logger, &conf.Bot)
	gameManager := usecase.NewGameManager(logger, playerRepo, gameRepo, moveEngine)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort); httpErr != nil {
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("application context canceled, shutting down")
		return nil
	}
}

// buildEngine - constructs the move decision engine; tiers delegate to the
// remote reasoning service only when credentials are configured.
func buildEngine(logger *slog.Logger, botConf *config.Bot) *engine.Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if !botConf.RemoteEnabled() {
		return engine.New(logger, rng, botConf.EasyTactics)
	}

	pool := engine.NewCredentialPool(botConf.APIKeys, botConf.FailureCeiling)

	return engine.NewWithRemote(logger, rng, pool, engine.RemoteOptions{
		BaseURL:     botConf.BaseURL,
		Model:       botConf.Model,
		Timeout:     botConf.Timeout,
		MaxAttempts: botConf.MaxAttempts,
	})
}
