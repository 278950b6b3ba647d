package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/gerardosocias29/cms-station/internal/api"
	"github.com/gerardosocias29/cms-station/internal/config"
	"github.com/gerardosocias29/cms-station/internal/logging"
	"github.com/gerardosocias29/cms-station/internal/printer"
	"github.com/gerardosocias29/cms-station/internal/relay"
	"github.com/gerardosocias29/cms-station/internal/telemetry"
)

func main() {
	listPrinters := flag.Bool("list-printers", false, "list attached usb devices and exit")
	adoptPrinter := flag.Bool("adopt-printer", false, "store the first printer-class device as the default, test print, and exit")
	videoURL := flag.String("set-video-url", "", "store the board's ambient video url and exit")
	flag.Parse()

	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.StationName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	client := api.NewClient(cfg.BackendURL, cfg.APIToken)

	if *listPrinters || *adoptPrinter || *videoURL != "" {
		runSettings(cfg, client, logger, *listPrinters, *adoptPrinter, *videoURL)
		return
	}

	shutdownTracing := telemetry.Setup("print-relay", cfg.StationName)

	var driver relay.Printer
	if !cfg.MockPrinter {
		usb := printer.NewUSBAccess(logger)
		defer usb.CloseContext()
		d := printer.NewDriver(usb, logger)
		d.InterfaceOverride = cfg.PrinterInterface
		driver = d
	}

	handler := relay.NewHandler(client, driver, logger, relay.Options{Mock: cfg.MockPrinter})
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(handler.Routes(), "print-relay"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("print relay listening", zap.String("addr", server.Addr), zap.Bool("mock", cfg.MockPrinter))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracing shutdown error", zap.Error(err))
	}
}

// runSettings handles the one-shot settings flags; the process exits
// instead of serving.
func runSettings(cfg config.Config, client *api.Client, logger *zap.Logger, listPrinters, adoptPrinter bool, videoURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var setup *relay.Setup
	if listPrinters || adoptPrinter {
		if cfg.MockPrinter {
			logger.Fatal("printer settings need hardware access, unset MOCK_PRINTER")
		}
		usb := printer.NewUSBAccess(logger)
		defer usb.CloseContext()
		d := printer.NewDriver(usb, logger)
		d.InterfaceOverride = cfg.PrinterInterface
		setup = relay.NewSetup(client, usb, d, logger)
	} else {
		setup = relay.NewSetup(client, nil, nil, logger)
	}

	if listPrinters {
		devices, err := setup.ListPrinters(ctx)
		if err != nil {
			logger.Fatal("device enumeration failed", zap.Error(err))
		}
		for _, d := range devices {
			fmt.Printf("%04x:%04x  %s  %s\n", d.VendorID, d.ProductID, d.Name, d.SerialNumber)
		}
		fmt.Printf("%d device(s)\n", len(devices))
	}

	if adoptPrinter {
		binding, err := setup.AdoptPrinter(ctx, cfg.PrinterInterface)
		if err != nil {
			logger.Fatal("printer adoption failed", zap.Error(err))
		}
		fmt.Printf("default printer set to %04x:%04x %s, test page sent\n",
			binding.VendorID, binding.ProductID, binding.Name)
	}

	if videoURL != "" {
		if err := setup.SetVideoURL(ctx, videoURL); err != nil {
			logger.Fatal("video url update failed", zap.Error(err))
		}
		fmt.Println("video url updated")
	}
}
