package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/gerardosocias29/cms-station/internal/api"
	"github.com/gerardosocias29/cms-station/internal/config"
	"github.com/gerardosocias29/cms-station/internal/display"
	"github.com/gerardosocias29/cms-station/internal/logging"
	"github.com/gerardosocias29/cms-station/internal/report"
)

func main() {
	departmentID := flag.String("department", "", "department id to filter by (empty for all)")
	date := flag.String("date", time.Now().Format("2006-01-02"), "queue date, YYYY-MM-DD")
	export := flag.String("export", "", "write the result as an xlsx workbook to this path")
	flag.Parse()

	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.StationName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	client := api.NewClient(cfg.BackendURL, cfg.APIToken)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := client.QueueHistory(ctx, *departmentID, *date)
	if err != nil {
		logger.Fatal("history fetch failed", zap.Error(err))
	}

	fmt.Printf("Queue history for %s (%d entries)\n\n", *date, len(rows))
	fmt.Print(display.HistoryTable(rows))

	if *export != "" {
		name := departmentName(ctx, client, *departmentID)
		if err := report.WriteHistoryXLSX(*export, name, *date, rows); err != nil {
			logger.Fatal("export failed", zap.Error(err))
		}
		fmt.Printf("\nExported %d entries to %s\n", len(rows), *export)
	}
}

// departmentName resolves the id to a display name for the workbook
// title. Best effort; the id itself is a fine fallback.
func departmentName(ctx context.Context, client *api.Client, id string) string {
	if id == "" {
		return "All Departments"
	}
	departments, err := client.Departments(ctx, false)
	if err != nil {
		return id
	}
	for _, d := range departments {
		if d.ID == id {
			return d.Name
		}
	}
	return id
}
