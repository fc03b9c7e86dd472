package effects

// Capabilities is the folded view of a tile's flags used during one cast.
// Stat modifiers are not folded; they are read live through List.Mod so a
// buff applied mid-cast counts immediately.
type Capabilities struct {
	Flags           Flags
	ReapThreshold   int // highest reap threshold, -1 when no reap effect is active
	RetaliateDamage int
}

// Capabilities folds the list into a capability set.
func (l List) Capabilities() Capabilities {
	c := Capabilities{ReapThreshold: -1}
	for _, e := range l {
		c.Flags |= e.Flags
		if e.Flags.Has(FlagReap) && e.Magnitude > c.ReapThreshold {
			c.ReapThreshold = e.Magnitude
		}
		if e.Flags.Has(FlagRetaliate) {
			c.RetaliateDamage += e.Magnitude * e.Stacks
		}
	}
	return c
}

// Has reports whether the folded set carries flag.
func (c Capabilities) Has(flag Flags) bool {
	return c.Flags.Has(flag)
}
