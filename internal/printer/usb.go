package printer

import (
	"context"
	"fmt"

	"github.com/google/gousb"
	"go.uber.org/zap"
)

// USBAccess is the libusb-backed DeviceAccess. One instance per
// process; Close releases the libusb context.
type USBAccess struct {
	ctx *gousb.Context
	log *zap.Logger
}

func NewUSBAccess(log *zap.Logger) *USBAccess {
	return &USBAccess{ctx: gousb.NewContext(), log: log}
}

func (u *USBAccess) CloseContext() error {
	return u.ctx.Close()
}

func (u *USBAccess) ListKnownDevices(ctx context.Context) ([]DeviceDescriptor, error) {
	devices, err := u.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool { return true })
	// OpenDevices hands back every device it did match even on error;
	// a single unreadable device must not hide the printer.
	if err != nil {
		u.log.Debug("partial usb enumeration", zap.Error(err))
	}

	descriptors := make([]DeviceDescriptor, 0, len(devices))
	for _, dev := range devices {
		descriptors = append(descriptors, describe(dev))
		dev.Close()
	}
	return descriptors, nil
}

func (u *USBAccess) RequestNewDevice(ctx context.Context) (DeviceDescriptor, error) {
	devices, err := u.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return isPrinterClass(desc)
	})
	if err != nil {
		u.log.Debug("partial usb enumeration", zap.Error(err))
	}
	if len(devices) == 0 {
		return DeviceDescriptor{}, ErrDeviceNotFound
	}

	descriptor := describe(devices[0])
	for _, dev := range devices {
		dev.Close()
	}
	return descriptor, nil
}

func (u *USBAccess) Open(ctx context.Context, desc DeviceDescriptor) (Device, error) {
	dev, err := u.ctx.OpenDeviceWithVIDPID(gousb.ID(desc.VendorID), gousb.ID(desc.ProductID))
	if err != nil {
		return nil, fmt.Errorf("open %04x:%04x: %w", desc.VendorID, desc.ProductID, err)
	}
	if dev == nil {
		return nil, ErrDeviceNotFound
	}
	// Kernel class drivers hold printer interfaces on Linux; detach so
	// the claim below can succeed.
	if err := dev.SetAutoDetach(true); err != nil {
		u.log.Debug("auto-detach unsupported", zap.Error(err))
	}
	return &usbDevice{dev: dev}, nil
}

func describe(dev *gousb.Device) DeviceDescriptor {
	descriptor := DeviceDescriptor{
		VendorID:  int(dev.Desc.Vendor),
		ProductID: int(dev.Desc.Product),
	}
	if product, err := dev.Product(); err == nil {
		descriptor.Name = product
	}
	if serial, err := dev.SerialNumber(); err == nil {
		descriptor.SerialNumber = serial
	}
	return descriptor
}

func isPrinterClass(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

type usbDevice struct {
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	out  *gousb.OutEndpoint
}

func (d *usbDevice) EnsureConfiguration(number int) error {
	cfg, err := d.dev.Config(number)
	if err != nil {
		return err
	}
	d.cfg = cfg
	return nil
}

func (d *usbDevice) ClaimInterface(number int) error {
	if d.cfg == nil {
		return fmt.Errorf("configuration not selected")
	}
	intf, err := d.cfg.Interface(number, 0)
	if err != nil {
		return &TransferError{DriverConflict: looksLikeDriverConflict(err), Err: err}
	}

	var outNumber = -1
	for _, ep := range intf.Setting.Endpoints {
		if ep.Direction == gousb.EndpointDirectionOut {
			outNumber = ep.Number
			break
		}
	}
	if outNumber < 0 {
		intf.Close()
		return ErrEndpointNotFound
	}

	out, err := intf.OutEndpoint(outNumber)
	if err != nil {
		intf.Close()
		return fmt.Errorf("out endpoint %d: %w", outNumber, err)
	}

	d.intf = intf
	d.out = out
	return nil
}

func (d *usbDevice) WriteBulk(data []byte) (int, error) {
	if d.out == nil {
		return 0, ErrEndpointNotFound
	}
	return d.out.Write(data)
}

func (d *usbDevice) ReleaseInterface(number int) {
	if d.intf != nil {
		d.intf.Close()
		d.intf = nil
		d.out = nil
	}
}

func (d *usbDevice) Close() error {
	if d.cfg != nil {
		d.cfg.Close()
		d.cfg = nil
	}
	return d.dev.Close()
}
