package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gerardosocias29/cms-station/internal/announce"
	"github.com/gerardosocias29/cms-station/internal/api"
	"github.com/gerardosocias29/cms-station/internal/config"
	"github.com/gerardosocias29/cms-station/internal/display"
	"github.com/gerardosocias29/cms-station/internal/logging"
	"github.com/gerardosocias29/cms-station/internal/models"
	"github.com/gerardosocias29/cms-station/internal/realtime"
	"github.com/gerardosocias29/cms-station/internal/telemetry"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.StationName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	shutdownTracing := telemetry.Setup("queue-board", cfg.StationName)

	client := api.NewClient(cfg.BackendURL, cfg.APIToken)

	announcer := announce.New(
		announce.NewCue(cfg.AnnouncerKind, cfg.ChimeWAV, logger),
		announce.NewSpeaker(cfg.AnnouncerKind, cfg.AudioDir, logger),
		logger,
	)

	board := &boardState{client: client, log: logger}
	board.refresh()

	broker, err := realtime.Connect(cfg.NATSURL, logger)
	if err != nil {
		// The board already polls; without push it just refreshes on
		// the slower cadence.
		logger.Warn("realtime unavailable, polling only", zap.Error(err))
	} else {
		defer broker.Close()

		displaySub, err := broker.Subscribe(realtime.DisplayChannel(cfg.Tenant))
		if err != nil {
			logger.Warn("display channel unavailable", zap.Error(err))
		} else {
			defer displaySub.Unsubscribe()
			displaySub.On(realtime.EventDisplayRefresh, func(json.RawMessage) {
				board.refresh()
			})
		}

		callOutSub, err := broker.Subscribe(realtime.CallOutChannel(cfg.Tenant))
		if err != nil {
			logger.Warn("call-out channel unavailable", zap.Error(err))
		} else {
			defer callOutSub.Unsubscribe()
			callOutSub.On(realtime.EventCallOut, func(data json.RawMessage) {
				var event models.CallOutEvent
				if err := json.Unmarshal(data, &event); err != nil {
					logger.Debug("malformed call-out payload", zap.Error(err))
					return
				}
				announcer.Announce(event)
			})
		}

		broker.OnReconnect(board.refresh)
	}

	poll := cfg.BoardPoll
	if poll <= 0 {
		poll = 10 * time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			board.refresh()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracing shutdown error", zap.Error(err))
	}
}

// boardState serializes refreshes from the ticker, push events and
// reconnect hooks so renders never interleave.
type boardState struct {
	client *api.Client
	log    *zap.Logger

	mu       sync.Mutex
	videoURL string
}

func (b *boardState) refresh() {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stations, err := b.client.Departments(ctx, true)
	if err != nil {
		b.log.Warn("station refresh failed", zap.Error(err))
		return
	}

	if url, err := b.client.VideoURL(ctx); err == nil {
		b.videoURL = url
	}

	fmt.Print("\033[2J\033[H")
	fmt.Println(display.Board(display.BoardView{
		ClinicName: "Asian Orthopedics",
		Tagline:    "Spine and Joints Center",
		Stations:   stations,
		VideoURL:   b.videoURL,
		Now:        time.Now(),
	}))
}
