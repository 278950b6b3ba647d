package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gerardosocias29/cms-station/internal/api"
	"github.com/gerardosocias29/cms-station/internal/config"
	"github.com/gerardosocias29/cms-station/internal/display"
	"github.com/gerardosocias29/cms-station/internal/logging"
	"github.com/gerardosocias29/cms-station/internal/models"
	"github.com/gerardosocias29/cms-station/internal/printer"
	"github.com/gerardosocias29/cms-station/internal/queue"
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

	shutdownTracing := telemetry.Setup("queue-console", cfg.StationName)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownTracing(ctx)
	}()

	client := api.NewClient(cfg.BackendURL, cfg.APIToken)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	profile, err := client.Profile(ctx)
	cancel()
	if err != nil {
		// A dead session is fatal to the console, same as the web
		// client logging the user out.
		logger.Fatal("profile fetch failed, please log in again", zap.Error(err))
	}

	departmentID := cfg.DepartmentID
	if departmentID == "" {
		departmentID = profile.Department.ID
	}

	controller := queue.NewController(client, logger)
	controller.SetOnChange(func() {
		render(profile, controller)
	})

	broker, err := realtime.Connect(cfg.NATSURL, logger)
	if err != nil {
		// Degraded mode: commands still work, the view just stops
		// converging until a manual refresh.
		logger.Warn("realtime unavailable, push updates disabled", zap.Error(err))
	} else {
		defer broker.Close()

		sub, err := broker.Subscribe(realtime.DepartmentChannel(cfg.Tenant, departmentID))
		if err != nil {
			logger.Warn("department channel unavailable", zap.Error(err))
		} else {
			defer sub.Unsubscribe()
			sub.On(realtime.EventQueueUpdated, func(json.RawMessage) {
				refresh(controller, logger)
			})
		}

		chat, err := broker.Subscribe(realtime.ChatChannel(cfg.Tenant))
		if err == nil {
			defer chat.Unsubscribe()
			chat.On(realtime.EventChatMessage, func(data json.RawMessage) {
				logger.Info("chat", zap.ByteString("message", data))
			})
		}

		// Events may have been lost across a reconnect gap; refetch
		// everything rather than trusting the buffer.
		broker.OnReconnect(func() {
			refresh(controller, logger)
		})
	}

	refreshAll(controller, logger)

	relayClient := printer.NewRelayClient(cfg.PrintRelayURL)
	runLoop(controller, client, relayClient, logger)
}

func render(profile models.Profile, controller *queue.Controller) {
	fmt.Print("\033[2J\033[H")
	fmt.Println(display.Console(display.ConsoleView{
		DepartmentName: profile.Department.Name,
		Specialization: profile.Department.Specialization,
		Snapshot:       controller.Snapshot(),
	}))
}

func refresh(controller *queue.Controller, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := controller.Refresh(ctx); err != nil {
		logger.Warn("queue refresh failed", zap.Error(err))
	}
}

func refreshAll(controller *queue.Controller, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := controller.Refresh(ctx); err != nil {
		logger.Warn("queue refresh failed", zap.Error(err))
	}
	if err := controller.RefreshDepartments(ctx); err != nil {
		logger.Warn("department refresh failed", zap.Error(err))
	}
	if err := controller.RefreshTotals(ctx); err != nil {
		logger.Warn("totals refresh failed", zap.Error(err))
	}
}

func runLoop(controller *queue.Controller, client *api.Client, relayClient *printer.RelayClient, logger *zap.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	var lastPrint *printer.Payload

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		switch fields[0] {
		case "q":
			cancel()
			return
		case "r":
			refreshAll(controller, logger)
		case "s":
			if len(fields) < 2 {
				fmt.Println("usage: s <queue position>")
				break
			}
			entry, ok := waitingAt(controller, fields[1])
			if !ok {
				fmt.Println("no such queue position")
				break
			}
			if err := controller.Start(ctx, entry.ID); err != nil {
				fmt.Println("start failed:", err)
			}
		case "e":
			if err := controller.End(ctx); err != nil {
				fmt.Println("end failed:", err)
			}
		case "d":
			if len(fields) < 2 {
				fmt.Println("usage: d <destination number>")
				break
			}
			dept, ok := departmentAt(controller, fields[1])
			if !ok {
				fmt.Println("no such destination")
				break
			}
			if err := controller.SelectDestination(dept.ID); err != nil {
				fmt.Println("select failed:", err)
			}
		case "t":
			if err := controller.Transfer(ctx); err != nil {
				fmt.Println("transfer failed:", err)
			}
		case "n":
			payload := intake(ctx, scanner, client, relayClient, controller, logger)
			if payload != nil {
				lastPrint = payload
			}
		case "p":
			if lastPrint == nil {
				fmt.Println("nothing to reprint")
				break
			}
			if err := relayClient.Print(ctx, *lastPrint); err != nil {
				fmt.Println("reprint failed:", err)
			} else {
				fmt.Println("reprinted", lastPrint.Text)
			}
		default:
			fmt.Println("unknown command:", fields[0])
		}
		cancel()
	}
}

func waitingAt(controller *queue.Controller, raw string) (models.Patient, bool) {
	position, err := strconv.Atoi(raw)
	snap := controller.Snapshot()
	if err != nil || position < 1 || position > len(snap.Waiting) {
		return models.Patient{}, false
	}
	return snap.Waiting[position-1], true
}

func departmentAt(controller *queue.Controller, raw string) (models.Department, bool) {
	index, err := strconv.Atoi(raw)
	snap := controller.Snapshot()
	if err != nil || index < 1 || index > len(snap.Departments) {
		return models.Department{}, false
	}
	return snap.Departments[index-1], true
}

// intake walks the registration form, submits it, and prints the
// ticket. The returned payload is kept for one-key reprint when the
// printer misbehaves.
func intake(ctx context.Context, scanner *bufio.Scanner, client *api.Client, relayClient *printer.RelayClient, controller *queue.Controller, logger *zap.Logger) *printer.Payload {
	prompt := func(label string) string {
		fmt.Print(label + ": ")
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}

	in := api.Intake{
		Name:          prompt("name"),
		Birthday:      prompt("birthday (YYYY-MM-DD)"),
		Address:       prompt("address"),
		Symptoms:      prompt("symptoms"),
		BloodPressure: prompt("blood pressure"),
		HeartRate:     prompt("heart rate"),
		Temperature:   prompt("temperature"),
		Priority:      strings.ToUpper(prompt("priority (P/SC/R)")),
	}

	if missing := in.Validate(); len(missing) > 0 {
		fmt.Println("missing required fields:", strings.Join(missing, ", "))
		return nil
	}

	created, err := client.CreatePatient(ctx, in)
	if err != nil {
		fmt.Println("registration failed:", err)
		return nil
	}
	fmt.Println("registered", created.Ticket())

	refreshAll(controller, logger)

	payload := printer.Payload{Text: created.Ticket(), LargeFont: true}
	if err := relayClient.Print(ctx, payload); err != nil {
		fmt.Println("ticket print failed:", err)
		fmt.Println("use p to reprint once the printer is back")
	}
	return &payload
}
