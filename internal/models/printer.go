package models

// PrinterBinding is the backend-stored default printer for a station.
// It is declarative: stations re-resolve it against live device
// enumeration before every print, never assume the device is still
// attached. InterfaceNumber is printer-model specific and part of the
// binding rather than negotiated at print time.
type PrinterBinding struct {
	VendorID        int    `json:"vendor_id"`
	ProductID       int    `json:"product_id"`
	Name            string `json:"name,omitempty"`
	SerialNumber    string `json:"serial_number,omitempty"`
	InterfaceNumber int    `json:"interface_number"`
}

// Configured reports whether a usable binding has been stored.
func (b PrinterBinding) Configured() bool {
	return b.VendorID != 0 || b.ProductID != 0
}
