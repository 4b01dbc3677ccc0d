package multitouch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ludoplex/iichid/pkg/bits"
)

// InputMode selects the device reporting mode via the configuration
// feature report.
type InputMode uint8

const (
	InputModeMouse       InputMode = 0x0
	InputModeTouchscreen InputMode = 0x2
	InputModeTouchpad    InputMode = 0x3
)

// maxReportBytes rejects absurd feature report lengths from corrupt
// descriptors before asking the transport for them.
const maxReportBytes = 1024

// FeatureAccessor reads and writes feature reports. Buffers exclude the
// report id prefix byte; transports that carry the id on the wire must
// strip and prepend it.
type FeatureAccessor interface {
	GetFeatureReport(id uint8, length int) ([]byte, error)
	SetFeatureReport(id uint8, data []byte) error
}

// RefineContactMax reads the contact count maximum feature report and, when
// it differs from the descriptor-declared value, overrides the slot axis
// maximum: hardware is known to under- and over-report in the descriptor.
// Read failures are non-fatal and keep the descriptor-derived value.
func RefineContactMax(log *zap.Logger, p *DeviceProfile, fa FeatureAccessor) {
	if p.ContactMax.Length <= 0 || p.ContactMax.Length > maxReportBytes {
		log.Debug("contact count maximum report size invalid",
			zap.Uint8("id", p.ContactMax.ID),
			zap.Int("length", p.ContactMax.Length))
		return
	}
	buf, err := fa.GetFeatureReport(p.ContactMax.ID, p.ContactMax.Length)
	if err != nil {
		log.Debug("contact count maximum read failed", zap.Error(err))
		return
	}
	contactMax := bits.GetUnsigned(buf, int(p.ContactMax.Loc.Pos), int(p.ContactMax.Loc.Size))
	if contactMax > MaxSlots {
		log.Debug("hardware reported more contacts than supported",
			zap.Uint32("contacts", contactMax),
			zap.Int("capacity", MaxSlots))
		contactMax = MaxSlots
	}
	if contactMax > 0 && int32(contactMax) != p.Axes[ChannelSlot].Maximum+1 {
		p.Axes[ChannelSlot].Maximum = int32(contactMax) - 1
		log.Info("contact count maximum taken from feature report",
			zap.Uint32("contacts", contactMax))
	}
}

// ReadCertificate fetches the vendor certificate blob once; some devices
// refuse to report touches until it has been read. Failures are ignored.
func ReadCertificate(log *zap.Logger, p *DeviceProfile, fa FeatureAccessor) {
	if p.Certificate.Length <= 0 || p.Certificate.Length > maxReportBytes ||
		p.Certificate.ID == p.ContactMax.ID {
		return
	}
	if _, err := fa.GetFeatureReport(p.Certificate.ID, p.Certificate.Length); err != nil {
		log.Debug("certificate read failed", zap.Error(err))
	}
}

// SetInputMode writes the reporting mode into the configuration feature
// report. The read half of the read-modify-write is best effort since the
// mode field is write-only on some firmware; a failed write is an
// initialization error.
func SetInputMode(log *zap.Logger, p *DeviceProfile, fa FeatureAccessor, mode InputMode) error {
	if p.InputMode.Length <= 0 || p.InputMode.Length > maxReportBytes {
		return fmt.Errorf("input mode report size invalid: %d", p.InputMode.Length)
	}
	buf, err := fa.GetFeatureReport(p.InputMode.ID, p.InputMode.Length)
	if err != nil || len(buf) != p.InputMode.Length {
		if err != nil {
			log.Debug("input mode read failed, assuming zero content", zap.Error(err))
		}
		buf = make([]byte, p.InputMode.Length)
	}
	bits.PutUnsigned(buf, int(p.InputMode.Loc.Pos), int(p.InputMode.Loc.Size), uint32(mode))
	if err := fa.SetFeatureReport(p.InputMode.ID, buf); err != nil {
		return fmt.Errorf("input mode write: %w", err)
	}
	return nil
}
