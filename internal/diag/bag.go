package diag

import "sort"

// Bag collects the diagnostics of one file up to a limit. Diagnostics past
// the limit are counted, not kept.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag returns a bag holding at most limit diagnostics; limit <= 0 means no limit.
func NewBag(limit int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, min(max(limit, 0), 64)),
		max:   limit,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Dropped is the number of diagnostics rejected by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// Items возвращает read-only slice диагностик.
// Срез указывает на внутренний массив Bag.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// HasErrors reports whether any kept diagnostic is an error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Sort orders by file, start, end, then severity (errors first) and code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i].Primary, b.items[j].Primary
		switch {
		case di.File != dj.File:
			return di.File < dj.File
		case di.Start != dj.Start:
			return di.Start < dj.Start
		case di.End != dj.End:
			return di.End < dj.End
		}
		si, sj := b.items[i].Severity, b.items[j].Severity
		if si != sj {
			return si > sj
		}
		return b.items[i].Code < b.items[j].Code
	})
}
