package relay

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gerardosocias29/cms-station/internal/models"
	"github.com/gerardosocias29/cms-station/internal/printer"
)

// SettingsStore persists station settings on the backend. The backend
// client satisfies it.
type SettingsStore interface {
	SetDefaultPrinter(ctx context.Context, binding models.PrinterBinding) error
	SetVideoURL(ctx context.Context, url string) error
}

// Setup drives the station settings the relay owns the hardware for:
// adopting a printer as the stored default and changing the board's
// ambient video.
type Setup struct {
	store   SettingsStore
	devices printer.DeviceAccess
	printer Printer
	log     *zap.Logger
}

func NewSetup(store SettingsStore, devices printer.DeviceAccess, driver Printer, log *zap.Logger) *Setup {
	return &Setup{store: store, devices: devices, printer: driver, log: log}
}

// ListPrinters enumerates the devices this station can already reach.
func (s *Setup) ListPrinters(ctx context.Context) ([]printer.DeviceDescriptor, error) {
	return s.devices.ListKnownDevices(ctx)
}

// AdoptPrinter requests access to a printer-class device, stores it as
// the station default, and proves the binding with a test page. The
// binding is stored before the test print so a paper jam does not lose
// the adoption.
func (s *Setup) AdoptPrinter(ctx context.Context, interfaceNumber int) (models.PrinterBinding, error) {
	desc, err := s.devices.RequestNewDevice(ctx)
	if err != nil {
		return models.PrinterBinding{}, fmt.Errorf("request device: %w", err)
	}
	if interfaceNumber < 0 {
		interfaceNumber = 0
	}

	binding := models.PrinterBinding{
		VendorID:        desc.VendorID,
		ProductID:       desc.ProductID,
		Name:            desc.Name,
		SerialNumber:    desc.SerialNumber,
		InterfaceNumber: interfaceNumber,
	}
	if err := s.store.SetDefaultPrinter(ctx, binding); err != nil {
		return models.PrinterBinding{}, fmt.Errorf("store binding: %w", err)
	}
	s.log.Info("default printer stored",
		zap.Int("vendor_id", binding.VendorID),
		zap.Int("product_id", binding.ProductID),
		zap.String("name", binding.Name))

	if err := s.printer.PrintTestPage(ctx, binding); err != nil {
		return binding, fmt.Errorf("test print: %w", err)
	}
	return binding, nil
}

// SetVideoURL stores the board's ambient video URL.
func (s *Setup) SetVideoURL(ctx context.Context, url string) error {
	if url == "" {
		return errors.New("video url is required")
	}
	return s.store.SetVideoURL(ctx, url)
}
