package hiddesc

// ReportSize computes the byte length of the report with the given kind and
// id by spanning the bit positions of all matching items. It returns 0 when
// no item matches or when the computed span is inverted, which happens with
// corrupt descriptors.
func ReportSize(items []Item, kind Kind, id uint8) int {
	lpos := ^uint32(0)
	hpos := uint32(0)
	for _, it := range items {
		if it.Kind != kind || it.ReportID != id {
			continue
		}
		if it.Loc.Pos < lpos {
			lpos = it.Loc.Pos
		}
		if end := it.Loc.End(); end > hpos {
			hpos = end
		}
	}
	if lpos > hpos {
		return 0
	}
	return int((hpos - lpos + 7) / 8)
}
