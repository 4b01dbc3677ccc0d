package multitouch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ludoplex/iichid/evdev"
)

func TestAttachTouchscreen(t *testing.T) {
	items := parseFixture(t, descOpts{fingers: 2, contactMax: 5})
	sink := newRecordSink()
	fa := &fakeAccessor{reports: map[uint8][]byte{
		2: {0x02}, // contact count maximum
		3: make([]byte, 256),
	}}
	dev, err := Attach(zap.NewNop(), items, fa, sink, NewSlotMap(MaxSlots))
	require.NoError(t, err)

	assert.Equal(t, []uint16{evdev.PropDirect}, sink.props)
	// Capabilities are declared after feature refinement.
	assert.Equal(t, int32(1), sink.axes[evdev.AbsMTSlot].Maximum)
	assert.Equal(t, int32(4095), sink.axes[evdev.AbsMTPositionX].Maximum)
	assert.Contains(t, fa.reads, uint8(3))
	// A touchscreen never selects a reporting mode.
	assert.Empty(t, fa.written)

	dev.ProcessReport(1, buildReport(dev.Profile(), 1, contact{tip: 1, conf: 1, cid: 4}))
	assert.Equal(t, 1, sink.syncs)
	assert.Equal(t, int32(4), sink.last(t, evdev.AbsMTTrackingID))
}

func TestAttachTouchpadSelectsMode(t *testing.T) {
	items := parseFixture(t, descOpts{touchpad: true, fingers: 1, contactMax: 1})
	sink := newRecordSink()
	fa := &fakeAccessor{reports: map[uint8][]byte{
		2: {0x01},
		3: make([]byte, 256),
		4: {0x00},
	}}
	_, err := Attach(zap.NewNop(), items, fa, sink, NewSlotMap(MaxSlots))
	require.NoError(t, err)

	assert.Equal(t, []uint16{evdev.PropPointer}, sink.props)
	assert.Equal(t, []byte{byte(InputModeTouchpad)}, fa.written[4])
}

func TestAttachTouchpadModeWriteFails(t *testing.T) {
	items := parseFixture(t, descOpts{touchpad: true, fingers: 1, contactMax: 1})
	fa := &fakeAccessor{writeErr: errors.New("io")}
	_, err := Attach(zap.NewNop(), items, fa, newRecordSink(), NewSlotMap(MaxSlots))
	require.Error(t, err)
}

func TestAttachTouchpadWithoutModeReport(t *testing.T) {
	items := parseFixture(t, descOpts{
		touchpad: true, fingers: 1, contactMax: 1, noInputMode: true,
	})
	fa := &fakeAccessor{writeErr: errors.New("io")}
	_, err := Attach(zap.NewNop(), items, fa, newRecordSink(), NewSlotMap(MaxSlots))
	require.NoError(t, err)
	assert.Empty(t, fa.written)
}

func TestAttachRejectsNonMultitouch(t *testing.T) {
	_, err := Attach(zap.NewNop(), nil, &fakeAccessor{}, newRecordSink(), NewSlotMap(MaxSlots))
	require.ErrorIs(t, err, ErrNotMultitouch)
}
