package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/config"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/peersync"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/presenter/terminal"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/repository"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/service"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/transport/peer"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-p2p/transport/relay"
	"github.com/rocketscienceinc/tictactoe-p2p/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// sessionPeer - what a coordinator needs from the sync protocol.
type sessionPeer interface {
	SendMove(cell int, player entity.Mark) error
	SendRestart() error
	Dispatch(msg entity.Message, target peersync.Target)
}

// NewLogger - JSON slog logger at the named level; unknown names mean info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level

	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// signalContext - cancelled on SIGINT or SIGTERM.
func signalContext(log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}

		signal.Stop(sigs)
	}()

	return ctx, cancel
}

// RunRelay - runs the REST API and the websocket relay over one Redis room store.
func RunRelay(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signalContext(log)
	defer cancel()

	redisAddr := conf.Redis.GetRedisAddr()
	if redisAddr == "" {
		return ErrAddrNotFound
	}

	redisClient, err := storage.New(ctx, redisAddr)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	roomRepo := repository.NewRoomRepository(redisClient, conf.Room.TTL)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)

		if httpErr := rest.Start(groupCtx, conf.HTTPPort, rest.NewRouter(logger, roomRepo)); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}

		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket relay", "port", conf.SocketPort)

		if wsErr := relay.New(logger, roomRepo).Start(groupCtx, conf.SocketPort); wsErr != nil {
			return fmt.Errorf("WebSocket relay error: %w", wsErr)
		}

		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// RunGame - runs the terminal client. A non-empty joinToken skips the menu once.
func RunGame(logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer, joinToken string) error {
	log := logger.With("component", "app")

	ctx, cancel := signalContext(log)
	defer cancel()

	input := terminal.NewInput(in)

	for {
		var (
			choice terminal.Choice
			err    error
		)

		if joinToken != "" {
			choice = terminal.Choice{Mode: entity.ModeOnline, Identity: entity.IdentityGuest, Token: joinToken}
			joinToken = ""
		} else {
			choice, err = input.ReadMenu(ctx, out)
		}

		if err != nil {
			if errors.Is(err, terminal.ErrQuit) || errors.Is(err, terminal.ErrInputClosed) || ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("failed to read menu: %w", err)
		}

		err = playSession(ctx, logger, conf, input, out, choice)
		if errors.Is(err, terminal.ErrInputClosed) || ctx.Err() != nil {
			return nil
		}

		if err != nil {
			log.Error("session failed", "mode", choice.Mode, "error", err)
		}
	}
}

func playSession(ctx context.Context, logger *slog.Logger, conf *config.Config, input *terminal.Input, out io.Writer, choice terminal.Choice) error {
	presenter := terminal.New(out, choice.Mode)

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		transport *peer.Transport
		syncPeer  sessionPeer
	)

	if choice.Mode == entity.ModeOnline {
		var err error

		transport, err = connect(ctx, logger, conf, out, choice)
		if err != nil {
			logger.Warn("could not connect", "identity", choice.Identity, "error", err)
			presenter.ShowModal("Connection failed", "Could not connect to game. Link might be invalid or expired.", "💔")

			return nil
		}
		defer transport.Close()

		syncPeer = peersync.New(logger, transport)
	}

	coordinator, err := usecase.NewCoordinator(logger, presenter, service.NewBotService(nil), syncPeer, usecase.Config{
		Mode:       choice.Mode,
		Identity:   choice.Identity,
		ThinkDelay: conf.Game.ComputerDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	group, groupCtx := errgroup.WithContext(sessionCtx)

	if transport != nil {
		transport.OnOpened(coordinator.PeerOpened)
		transport.OnMessageReceived(coordinator.MessageReceived)
		transport.OnClosed(coordinator.PeerClosed)

		group.Go(func() error {
			return transport.Listen(groupCtx)
		})
	}

	group.Go(func() error {
		defer cancel()
		return coordinator.Run(groupCtx)
	})

	group.Go(func() error {
		defer cancel()
		return input.ReadCommands(groupCtx, coordinator)
	})

	if err = group.Wait(); usecase.IsPeerGone(err) {
		return nil
	}

	return err
}

// connect - the host opens a room first; the guest already holds its token.
func connect(ctx context.Context, logger *slog.Logger, conf *config.Config, out io.Writer, choice terminal.Choice) (*peer.Transport, error) {
	token := choice.Token

	if choice.Identity == entity.IdentityHost {
		var err error

		token, err = peer.CreateRoom(ctx, conf.Game.RelayURL)
		if err != nil {
			return nil, err
		}
	}

	transport, err := peer.Dial(ctx, logger, conf.Game.SocketURL, token, choice.Identity)
	if err != nil {
		return nil, err
	}

	if choice.Identity == entity.IdentityHost {
		_, _ = fmt.Fprintf(out, "\nShare this join token: %s\n   (the other player runs: tictactoe -join %s)\n", token, token)
	}

	return transport, nil
}
