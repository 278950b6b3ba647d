package printer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gerardosocias29/cms-station/internal/models"
)

var (
	// ErrDeviceNotFound means the stored default binding matched no
	// currently visible device. The fix is physical (reattach) or a
	// new binding via settings, so it carries a retry affordance, not
	// a crash.
	ErrDeviceNotFound = errors.New("default printer is not connected or permission not granted")

	// ErrEndpointNotFound means the claimed interface exposes no
	// bulk-OUT endpoint: the bound interface number does not match
	// this printer model.
	ErrEndpointNotFound = errors.New("claimed interface has no OUT endpoint")

	// ErrPermissionDenied is the user declining device access.
	ErrPermissionDenied = errors.New("printer access was denied")
)

// TransferError is a bulk transfer the OS or driver rejected.
// DriverConflict marks the common case where a class driver holds the
// interface instead of a generic one; its message carries the
// remediation because "I/O error" alone sends people down the wrong
// path.
type TransferError struct {
	DriverConflict bool
	Err            error
}

func (e *TransferError) Error() string {
	if e.DriverConflict {
		return "printing failed: the operating system is blocking direct access to the printer interface; " +
			"replace the driver for this interface with a generic one (e.g. WinUSB via Zadig) and try again"
	}
	return fmt.Sprintf("printer transfer failed: %v", e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// DeviceDescriptor identifies one attached device the way bindings do.
type DeviceDescriptor struct {
	VendorID     int    `json:"vendor_id"`
	ProductID    int    `json:"product_id"`
	Name         string `json:"name,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// DeviceAccess is the narrow capability the driver needs from the
// platform. The real implementation is libusb-backed; tests inject
// fakes so no hardware is involved.
type DeviceAccess interface {
	// ListKnownDevices enumerates devices already granted to this
	// station. It never prompts for new access.
	ListKnownDevices(ctx context.Context) ([]DeviceDescriptor, error)

	// RequestNewDevice asks the platform for access to one more
	// device, prompting if it must. ErrPermissionDenied when refused.
	RequestNewDevice(ctx context.Context) (DeviceDescriptor, error)

	Open(ctx context.Context, desc DeviceDescriptor) (Device, error)
}

// Device is one opened printer. Acquisition is scoped: the driver pairs
// every successful open and claim with a release and close on all
// paths, which is what keeps a failed print from wedging the device
// for the next attempt.
type Device interface {
	EnsureConfiguration(number int) error
	ClaimInterface(number int) error
	WriteBulk(data []byte) (int, error)
	ReleaseInterface(number int)
	Close() error
}

// Driver prints against the backend-stored default binding. The
// binding is declarative: it is re-resolved against live enumeration
// before every job, so a stale binding degrades to ErrDeviceNotFound
// instead of a blind open.
type Driver struct {
	access DeviceAccess
	log    *zap.Logger

	// InterfaceOverride, when >= 0, wins over the binding's interface
	// number for stations whose OS enumerates differently.
	InterfaceOverride int
}

func NewDriver(access DeviceAccess, log *zap.Logger) *Driver {
	return &Driver{access: access, log: log, InterfaceOverride: -1}
}

func (d *Driver) interfaceNumber(binding models.PrinterBinding) int {
	if d.InterfaceOverride >= 0 {
		return d.InterfaceOverride
	}
	return binding.InterfaceNumber
}

// Print renders the payload and sends it to the bound printer.
func (d *Driver) Print(ctx context.Context, binding models.PrinterBinding, payload Payload) error {
	return d.send(ctx, binding, Ticket(payload, time.Now()))
}

// PrintTestPage sends the settings test page.
func (d *Driver) PrintTestPage(ctx context.Context, binding models.PrinterBinding) error {
	return d.send(ctx, binding, TestPage(time.Now()))
}

func (d *Driver) send(ctx context.Context, binding models.PrinterBinding, data []byte) error {
	if !binding.Configured() {
		return fmt.Errorf("no default printer configured: %w", ErrDeviceNotFound)
	}

	devices, err := d.access.ListKnownDevices(ctx)
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}

	var match *DeviceDescriptor
	for i, dev := range devices {
		if dev.VendorID == binding.VendorID && dev.ProductID == binding.ProductID {
			match = &devices[i]
			break
		}
	}
	if match == nil {
		return ErrDeviceNotFound
	}

	device, err := d.access.Open(ctx, *match)
	if err != nil {
		return fmt.Errorf("open printer: %w", err)
	}
	defer device.Close()

	if err := device.EnsureConfiguration(1); err != nil {
		return fmt.Errorf("select configuration: %w", err)
	}

	iface := d.interfaceNumber(binding)
	if err := device.ClaimInterface(iface); err != nil {
		return err
	}
	defer device.ReleaseInterface(iface)

	n, err := device.WriteBulk(data)
	if err != nil {
		return classifyTransfer(err)
	}
	d.log.Info("print job sent",
		zap.Int("bytes", n),
		zap.Int("vendor_id", binding.VendorID),
		zap.Int("product_id", binding.ProductID))
	return nil
}

func classifyTransfer(err error) error {
	if errors.Is(err, ErrEndpointNotFound) {
		return err
	}
	return &TransferError{DriverConflict: looksLikeDriverConflict(err), Err: err}
}

func looksLikeDriverConflict(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"protected class", "access denied", "busy", "libusb_error_access", "libusb_error_busy"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
