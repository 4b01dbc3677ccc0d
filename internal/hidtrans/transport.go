// Package hidtrans is the live transport: it opens a hidraw device through
// the hidapi library, fetches the report descriptor, proxies feature report
// access and pumps input reports into a handler. The core never performs
// I/O itself; everything it consumes arrives through this package as
// already-materialized buffers.
package hidtrans

import (
	"context"
	"fmt"
	"time"

	"github.com/sstallion/go-hid"
	"go.uber.org/zap"
)

const (
	readBufSize = 1024
	descBufSize = 4096
)

// Address identifies a device by vendor and product id.
type Address struct {
	VendorID  uint16
	ProductID uint16
}

func (a Address) String() string {
	return fmt.Sprintf("%04x:%04x", a.VendorID, a.ProductID)
}

// ParseAddress parses a "vvvv:pppp" hex address.
func ParseAddress(s string) (Address, error) {
	var addr Address
	if _, err := fmt.Sscanf(s, "%04x:%04x", &addr.VendorID, &addr.ProductID); err != nil {
		return Address{}, fmt.Errorf("invalid device address %q: %w", s, err)
	}
	return addr, nil
}

// Device wraps an open hidraw handle. It implements the feature accessor
// contract of the multitouch core: feature buffers exclude the report id
// prefix byte, which hidapi carries on the wire.
type Device struct {
	log *zap.Logger
	dev *hid.Device

	// numbered is true once the caller learns the input report id is
	// non-zero; numbered devices prefix every input report with its id.
	numbered bool
}

// Open opens the first device matching addr.
func Open(log *zap.Logger, addr Address) (*Device, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("hidapi init: %w", err)
	}
	dev, err := hid.OpenFirst(addr.VendorID, addr.ProductID)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", addr, err)
	}
	return &Device{log: log, dev: dev}, nil
}

func (d *Device) Close() error {
	return d.dev.Close()
}

// SetNumbered tells the read loop whether input reports carry an id
// prefix byte.
func (d *Device) SetNumbered(numbered bool) {
	d.numbered = numbered
}

// ReportDescriptor fetches the raw report descriptor bytes.
func (d *Device) ReportDescriptor() ([]byte, error) {
	buf := make([]byte, descBufSize)
	n, err := d.dev.GetReportDescriptor(buf)
	if err != nil {
		return nil, fmt.Errorf("report descriptor: %w", err)
	}
	return buf[:n], nil
}

// GetFeatureReport reads a feature report, stripping the id prefix.
func (d *Device) GetFeatureReport(id uint8, length int) ([]byte, error) {
	buf := make([]byte, length+1)
	buf[0] = id
	n, err := d.dev.GetFeatureReport(buf)
	if err != nil {
		return nil, fmt.Errorf("get feature %d: %w", id, err)
	}
	if n < 1 {
		return nil, fmt.Errorf("get feature %d: empty reply", id)
	}
	out := buf[1:n]
	if len(out) > length {
		out = out[:length]
	}
	return out, nil
}

// SetFeatureReport writes a feature report, prepending the id prefix.
func (d *Device) SetFeatureReport(id uint8, data []byte) error {
	buf := make([]byte, len(data)+1)
	buf[0] = id
	copy(buf[1:], data)
	if _, err := d.dev.SendFeatureReport(buf); err != nil {
		return fmt.Errorf("send feature %d: %w", id, err)
	}
	return nil
}

// ReportHandler receives one input report at a time. Calls are serialized;
// data excludes the report id prefix.
type ReportHandler func(id uint8, data []byte)

// ReadReports pumps input reports into handler until ctx is cancelled or
// the device read fails. Reports for one device are delivered one at a
// time, never concurrently.
func (d *Device) ReadReports(ctx context.Context, handler ReportHandler) error {
	buf := make([]byte, readBufSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := d.dev.ReadWithTimeout(buf, 250*time.Millisecond)
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}
		if n == 0 {
			// Timeout; loop back to observe cancellation.
			continue
		}
		data := buf[:n]
		var id uint8
		if d.numbered {
			id = data[0]
			data = data[1:]
		}
		handler(id, data)
	}
}
