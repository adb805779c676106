package arena

// Capacity returns the fixed size of the arena buffer in bytes.
func (a *Arena) Capacity() int {
	return a.layout.Size
}

// Alignment returns the alignment of the buffer start.
func (a *Arena) Alignment() int {
	return a.layout.Align
}

// Offset returns the position of the next free byte. It never decreases.
func (a *Arena) Offset() int {
	return a.offset
}

// SizeInUse returns the number of bytes reserved so far, including any
// padding inserted in type-alignment mode.
func (a *Arena) SizeInUse() int {
	return a.offset
}

// Remaining returns the number of bytes still free.
func (a *Arena) Remaining() int {
	return a.layout.Size - a.offset
}

// Allocations returns the number of successful non-empty allocations.
func (a *Arena) Allocations() int {
	return a.count
}

// Utilization returns the ratio of bytes in use to capacity (0.0 to 1.0).
func (a *Arena) Utilization() float64 {
	if a.layout.Size == 0 {
		return 0
	}
	return float64(a.offset) / float64(a.layout.Size)
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		Remaining:   a.Remaining(),
		Alignment:   a.Alignment(),
		Allocations: a.Allocations(),
		Utilization: a.Utilization(),
		Closed:      a.Closed(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse   int     `yaml:"size_in_use"` // Bytes currently allocated
	Capacity    int     `yaml:"capacity"`    // Total capacity in bytes
	Remaining   int     `yaml:"remaining"`   // Bytes still free
	Alignment   int     `yaml:"alignment"`   // Buffer alignment
	Allocations int     `yaml:"allocations"` // Successful allocations
	Utilization float64 `yaml:"utilization"` // Ratio of used to total capacity (0.0-1.0)
	Closed      bool    `yaml:"closed"`
}
