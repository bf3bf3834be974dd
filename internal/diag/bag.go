package diag

// Bag collects offenses in the order they were reported. It never sorts or
// deduplicates: two reports of the same offense are two entries.
type Bag struct {
	items     []Offense
	max       int
	truncated bool
}

// NewBag creates a bag that keeps at most max offenses; max <= 0 means no limit.
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 64
	}
	return &Bag{
		items: make([]Offense, 0, capHint),
		max:   max,
	}
}

// Add добавляет offense, учитывая лимит.
// Возвращает false, если offense не добавлен (достигнут лимит).
func (b *Bag) Add(o Offense) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.truncated = true
		return false
	}
	b.items = append(b.items, o)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Truncated reports whether at least one offense was dropped by the limit.
func (b *Bag) Truncated() bool {
	return b.truncated
}

// MarkTruncated records that offenses were dropped before they reached the
// bag, as for results restored from a cache.
func (b *Bag) MarkTruncated() {
	b.truncated = true
}

// Truncate applies the limit max to a bag that was filled without one,
// dropping the offenses past it. max <= 0 leaves the bag unchanged.
func (b *Bag) Truncate(max int) {
	if max <= 0 {
		return
	}
	b.max = max
	if len(b.items) > max {
		clear(b.items[max:])
		b.items = b.items[:max]
		b.truncated = true
	}
}

// HasErrors возвращает true, если есть хотя бы один offense с Severity >= Error
func (b *Bag) HasErrors() bool {
	return b.HasAtLeast(SevError)
}

// HasWarnings возвращает true, если есть хотя бы один offense с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	return b.HasAtLeast(SevWarning)
}

// HasAtLeast reports whether any offense has severity sev or higher.
func (b *Bag) HasAtLeast(sev Severity) bool {
	for i := range b.items {
		if b.items[i].Severity >= sev {
			return true
		}
	}
	return false
}

// CountBySeverity returns the number of offenses per severity.
func (b *Bag) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, 4)
	for i := range b.items {
		counts[b.items[i].Severity]++
	}
	return counts
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice offense'ов.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Offense {
	return b.items
}

// Merge appends the offenses of other, keeping their order. The limit and
// the truncation flag of b apply.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	for _, o := range other.items {
		b.Add(o)
	}
	if other.truncated {
		b.truncated = true
	}
}

// Filter keeps only the offenses for which keep returns true and returns the
// number of removed entries. Relative order is preserved.
func (b *Bag) Filter(keep func(Offense) bool) int {
	kept := b.items[:0]
	for _, o := range b.items {
		if keep(o) {
			kept = append(kept, o)
		}
	}
	removed := len(b.items) - len(kept)
	clear(b.items[len(kept):])
	b.items = kept
	return removed
}
