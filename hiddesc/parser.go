package hiddesc

import (
	"encoding/binary"
	"fmt"
)

// Item prefixes: tag in the high nibble, type in bits 3:2, payload size in
// bits 1:0 (3 means 4 bytes).
const (
	itemTypeMain   = 0
	itemTypeGlobal = 1
	itemTypeLocal  = 2

	longItemPrefix = 0xfe
)

// Main item tags.
const (
	tagInput         = 0x8
	tagOutput        = 0x9
	tagCollection    = 0xa
	tagFeature       = 0xb
	tagEndCollection = 0xc
)

// Global item tags.
const (
	tagUsagePage       = 0x0
	tagLogicalMinimum  = 0x1
	tagLogicalMaximum  = 0x2
	tagPhysicalMinimum = 0x3
	tagPhysicalMaximum = 0x4
	tagUnitExponent    = 0x5
	tagUnit            = 0x6
	tagReportSize      = 0x7
	tagReportID        = 0x8
	tagReportCount     = 0x9
	tagPush            = 0xa
	tagPop             = 0xb
)

// Local item tags.
const (
	tagUsage        = 0x0
	tagUsageMinimum = 0x1
	tagUsageMaximum = 0x2
)

type globalState struct {
	usagePage       uint16
	logicalMinimum  int32
	logicalMaximum  int32
	physicalMinimum int32
	physicalMaximum int32
	unitExponent    int32
	unit            uint32
	reportSize      uint32
	reportCount     uint32
	reportID        uint8
}

type localState struct {
	// usages holds raw usage values; entries without an explicit page in
	// the high bits take the global usage page at main-item time.
	usages       []uint32
	usageMinimum uint32
	usageMaximum uint32
}

func (l *localState) usageAt(page uint16, idx int) Usage {
	if len(l.usages) > 0 {
		if idx >= len(l.usages) {
			// HID repeats the last listed usage for the remaining
			// elements of a variable field.
			idx = len(l.usages) - 1
		}
		return resolveUsage(page, l.usages[idx])
	}
	if l.usageMaximum >= l.usageMinimum && l.usageMaximum > 0 {
		u := l.usageMinimum + uint32(idx)
		if u > l.usageMaximum {
			u = l.usageMaximum
		}
		return resolveUsage(page, u)
	}
	return 0
}

func resolveUsage(page uint16, raw uint32) Usage {
	if raw>>16 != 0 {
		return Usage(raw)
	}
	return NewUsage(page, uint16(raw))
}

type posKey struct {
	kind     Kind
	reportID uint8
}

type parser struct {
	items []Item
	depth int

	global      globalState
	globalStack []globalState
	local       localState

	// pos tracks the running bit position per report kind and id.
	pos map[posKey]uint32
}

// Parse flattens a raw report descriptor into an item stream. Parsing is
// lenient: a truncated trailing item ends the stream, unknown tags are
// skipped and unbalanced end-collection items are clamped at depth zero.
// Structural violations that would make locations meaningless (for example
// a malformed payload on a known item) return an error.
func Parse(data []byte) ([]Item, error) {
	p := &parser{pos: make(map[posKey]uint32)}
	for i := 0; i < len(data); {
		prefix := data[i]
		i++
		if prefix == longItemPrefix {
			// Long item: [prefix, dataSize, tag, data...]. Nothing in a
			// digitizer descriptor uses them; skip the payload.
			if i >= len(data) {
				break
			}
			i += int(data[i]) + 2
			continue
		}
		size := int(prefix & 0x3)
		if size == 3 {
			size = 4
		}
		if i+size > len(data) {
			break
		}
		payload := data[i : i+size]
		i += size

		var err error
		switch (prefix >> 2) & 0x3 {
		case itemTypeMain:
			err = p.mainItem(prefix>>4, payload)
		case itemTypeGlobal:
			err = p.globalItem(prefix>>4, payload)
		case itemTypeLocal:
			err = p.localItem(prefix>>4, payload)
		}
		if err != nil {
			return nil, err
		}
	}
	return p.items, nil
}

func (p *parser) mainItem(tag uint8, payload []byte) error {
	switch tag {
	case tagCollection:
		if len(payload) != 1 {
			return fmt.Errorf("collection: payload length is not 1")
		}
		p.depth++
		p.items = append(p.items, Item{
			Kind:           KindCollection,
			Depth:          p.depth,
			ReportID:       p.global.reportID,
			Usage:          p.local.usageAt(p.global.usagePage, 0),
			CollectionType: payload[0],
		})
	case tagEndCollection:
		if p.depth > 0 {
			p.depth--
		}
		p.items = append(p.items, Item{
			Kind:     KindEndCollection,
			Depth:    p.depth,
			ReportID: p.global.reportID,
		})
	case tagInput:
		p.dataItem(KindInput, payload)
	case tagOutput:
		p.dataItem(KindOutput, payload)
	case tagFeature:
		p.dataItem(KindFeature, payload)
	}
	p.local = localState{}
	return nil
}

func (p *parser) dataItem(kind Kind, payload []byte) {
	flags := DataFlags(payloadUint32(payload))
	key := posKey{kind: kind, reportID: p.global.reportID}
	base := Item{
		Kind:            kind,
		Depth:           p.depth,
		ReportID:        p.global.reportID,
		Flags:           flags,
		LogicalMinimum:  p.global.logicalMinimum,
		LogicalMaximum:  p.global.logicalMaximum,
		PhysicalMinimum: p.global.physicalMinimum,
		PhysicalMaximum: p.global.physicalMaximum,
		UnitExponent:    p.global.unitExponent,
		Unit:            p.global.unit,
	}
	if flags.IsVariable() && !flags.IsConstant() {
		// One item per element, each with its own usage and position.
		for e := 0; e < int(p.global.reportCount); e++ {
			it := base
			it.Usage = p.local.usageAt(p.global.usagePage, e)
			it.Loc = Location{
				Pos:   p.pos[key],
				Size:  p.global.reportSize,
				Count: 1,
			}
			p.pos[key] += p.global.reportSize
			p.items = append(p.items, it)
		}
		return
	}
	// Constants and arrays keep their element count collapsed into the
	// location; only the span matters for sizing.
	it := base
	it.Usage = p.local.usageAt(p.global.usagePage, 0)
	it.Loc = Location{
		Pos:   p.pos[key],
		Size:  p.global.reportSize,
		Count: p.global.reportCount,
	}
	p.pos[key] += p.global.reportSize * p.global.reportCount
	p.items = append(p.items, it)
}

func (p *parser) globalItem(tag uint8, payload []byte) error {
	switch tag {
	case tagUsagePage:
		v, err := payloadUint16(payload)
		if err != nil {
			return fmt.Errorf("usage page: %w", err)
		}
		p.global.usagePage = v
	case tagLogicalMinimum:
		v, err := payloadInt32(payload)
		if err != nil {
			return fmt.Errorf("logical minimum: %w", err)
		}
		p.global.logicalMinimum = v
	case tagLogicalMaximum:
		v, err := payloadInt32(payload)
		if err != nil {
			return fmt.Errorf("logical maximum: %w", err)
		}
		p.global.logicalMaximum = v
	case tagPhysicalMinimum:
		v, err := payloadInt32(payload)
		if err != nil {
			return fmt.Errorf("physical minimum: %w", err)
		}
		p.global.physicalMinimum = v
	case tagPhysicalMaximum:
		v, err := payloadInt32(payload)
		if err != nil {
			return fmt.Errorf("physical maximum: %w", err)
		}
		p.global.physicalMaximum = v
	case tagUnitExponent:
		p.global.unitExponent = unitExponent(payloadUint32(payload))
	case tagUnit:
		p.global.unit = payloadUint32(payload)
	case tagReportSize:
		p.global.reportSize = payloadUint32(payload)
	case tagReportID:
		p.global.reportID = uint8(payloadUint32(payload))
	case tagReportCount:
		p.global.reportCount = payloadUint32(payload)
	case tagPush:
		p.globalStack = append(p.globalStack, p.global)
	case tagPop:
		if n := len(p.globalStack); n > 0 {
			p.global = p.globalStack[n-1]
			p.globalStack = p.globalStack[:n-1]
		}
	}
	return nil
}

func (p *parser) localItem(tag uint8, payload []byte) error {
	switch tag {
	case tagUsage:
		p.local.usages = append(p.local.usages, payloadUint32(payload))
	case tagUsageMinimum:
		p.local.usageMinimum = payloadUint32(payload)
	case tagUsageMaximum:
		p.local.usageMaximum = payloadUint32(payload)
	}
	return nil
}

// unitExponent interprets the 4-bit two's complement exponent nibble.
func unitExponent(v uint32) int32 {
	if v&0x8 != 0 && v <= 0xf {
		return int32(v) - 16
	}
	return int32(v)
}

func payloadUint32(payload []byte) uint32 {
	var v uint32
	for i := len(payload) - 1; i >= 0; i-- {
		v = v<<8 | uint32(payload[i])
	}
	return v
}

func payloadUint16(payload []byte) (uint16, error) {
	switch len(payload) {
	case 0:
		return 0, fmt.Errorf("payload is missing")
	case 1:
		return uint16(payload[0]), nil
	case 2:
		return binary.LittleEndian.Uint16(payload), nil
	default:
		return 0, fmt.Errorf("payload too long")
	}
}

func payloadInt32(payload []byte) (int32, error) {
	switch len(payload) {
	case 1:
		return int32(int8(payload[0])), nil
	case 2:
		return int32(int16(binary.LittleEndian.Uint16(payload))), nil
	case 4:
		return int32(binary.LittleEndian.Uint32(payload)), nil
	default:
		return 0, fmt.Errorf("payload length is not 1, 2 or 4")
	}
}
