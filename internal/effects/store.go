package effects

// Outcome describes how an Add call changed the list.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeRefreshed Outcome = "refreshed"
	OutcomeStacked   Outcome = "stacked"
	OutcomeReplaced  Outcome = "replaced"
	OutcomeIgnored   Outcome = "ignored"
)

// List is the ordered set of effects on a tile. Order is application order and
// is preserved by every operation so replays see the same sequence.
type List []*Effect

// Find returns the first effect with the given name.
func (l List) Find(name string) *Effect {
	for _, e := range l {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Add applies e following the stacking policy of the existing instance, or
// appends it when no instance with the same name exists. It returns the
// instance now carried by the list.
func (l *List) Add(e *Effect) (*Effect, Outcome) {
	for i, cur := range *l {
		if cur.Name != e.Name {
			continue
		}
		switch cur.Stacking {
		case StackIgnore:
			return cur, OutcomeIgnored
		case StackReplace:
			(*l)[i] = e
			return e, OutcomeReplaced
		case StackAdd:
			cur.Stacks += e.Stacks
			if cur.MaxStacks > 0 && cur.Stacks > cur.MaxStacks {
				cur.Stacks = cur.MaxStacks
			}
			cur.Remaining = maxRemaining(cur.Remaining, e.Remaining)
			cur.Applier = e.Applier
			return cur, OutcomeStacked
		default:
			cur.Remaining = maxRemaining(cur.Remaining, e.Remaining)
			cur.Applier = e.Applier
			return cur, OutcomeRefreshed
		}
	}
	*l = append(*l, e)
	return e, OutcomeApplied
}

// maxRemaining keeps permanence: a permanent instance never becomes timed.
func maxRemaining(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > b {
		return a
	}
	return b
}

// Remove drops the named effect and returns it, or nil when absent.
func (l *List) Remove(name string) *Effect {
	for i, e := range *l {
		if e.Name == name {
			*l = append((*l)[:i:i], (*l)[i+1:]...)
			return e
		}
	}
	return nil
}

// RemoveWhere drops every effect for which match returns true and returns the
// removed ones in list order.
func (l *List) RemoveWhere(match func(*Effect) bool) []*Effect {
	var removed []*Effect
	kept := (*l)[:0:0]
	for _, e := range *l {
		if match(e) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	*l = kept
	return removed
}

// Tick advances timed effects by one round and removes the ones that ran out.
// Permanent effects are left alone.
func (l *List) Tick() []*Effect {
	expired := make(map[*Effect]bool)
	for _, e := range *l {
		if e.Permanent() {
			continue
		}
		e.Remaining--
		if e.Remaining == 0 {
			expired[e] = true
		}
	}
	if len(expired) == 0 {
		return nil
	}
	return l.RemoveWhere(func(e *Effect) bool { return expired[e] })
}

// Clear removes everything.
func (l *List) Clear() []*Effect {
	removed := *l
	*l = nil
	return removed
}

// Consume removes the single-use effects carrying flag once that flag has
// fired, and returns them in list order.
func (l *List) Consume(flag Flags) []*Effect {
	return l.RemoveWhere(func(e *Effect) bool {
		return e.SingleUse && e.Flags.Has(flag)
	})
}

// FirstWithFlag returns the earliest applied effect carrying flag.
func (l List) FirstWithFlag(flag Flags) *Effect {
	for _, e := range l {
		if e.Flags.Has(flag) {
			return e
		}
	}
	return nil
}

// Count returns the number of effects of a kind; an empty kind counts all.
func (l List) Count(kind Kind) int {
	if kind == "" {
		return len(l)
	}
	n := 0
	for _, e := range l {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// StacksOf returns the stack count of the named effect, zero when absent.
func (l List) StacksOf(name string) int {
	if e := l.Find(name); e != nil {
		return e.Stacks
	}
	return 0
}

// Mod sums the stat modifier over all effects.
func (l List) Mod(stat Stat) int {
	total := 0
	for _, e := range l {
		total += e.Mod(stat)
	}
	return total
}

// Clone deep-copies the list.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, e := range l {
		out[i] = e.Clone()
	}
	return out
}
