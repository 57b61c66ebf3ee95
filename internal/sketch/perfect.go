package sketch

// Perfect keeps exact access counts per key. It trades memory for precision
// and exists for deterministic experiments and tests; real runs use CountMin.
type Perfect struct {
	counts map[uint64]uint32
}

var _ Frequency = (*Perfect)(nil)

func NewPerfect() *Perfect {
	return &Perfect{counts: make(map[uint64]uint32)}
}

func (p *Perfect) Increment(key uint64) {
	p.counts[key]++
}

func (p *Perfect) Frequency(key uint64) uint32 {
	return p.counts[key]
}

func (p *Perfect) ReportMiss() {}
