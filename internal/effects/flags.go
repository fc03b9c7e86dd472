package effects

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Flags is a set of capability predicates carried by an effect.
type Flags uint32

const (
	// FlagTaunt forces single-target enemy spells onto the carrier.
	FlagTaunt Flags = 1 << iota
	// FlagPreventMovement blocks the carrier from being moved between rounds.
	FlagPreventMovement
	// FlagPreventSingleTarget hides the carrier from single-target enemy spells.
	FlagPreventSingleTarget
	// FlagForceMultiTargetToSelf collapses multi-target enemy spells onto the carrier.
	FlagForceMultiTargetToSelf
	// FlagRedirectSingleTargetToApplier moves single-target hits to the applier.
	FlagRedirectSingleTargetToApplier
	// FlagForceSingleTargetLowestArmor makes the carrier's single-target spells pick lowest armor.
	FlagForceSingleTargetLowestArmor
	// FlagPreventCasting stops the carrier from acting this round.
	FlagPreventCasting
	// FlagPreventHealing blocks incoming heals.
	FlagPreventHealing
	// FlagReap executes the carrier at or below Magnitude health.
	FlagReap
	// FlagRetaliate deals Magnitude damage back to enemy attackers.
	FlagRetaliate
	// FlagBacklash deals Magnitude damage to an enemy that cleanses it.
	FlagBacklash
	// FlagSurviveLethal keeps the carrier at 1 health once, then is consumed.
	FlagSurviveLethal
)

var flagNames = map[string]Flags{
	"taunt":                         FlagTaunt,
	"preventMovement":               FlagPreventMovement,
	"preventSingleTarget":           FlagPreventSingleTarget,
	"forceMultiTargetToSelf":        FlagForceMultiTargetToSelf,
	"redirectSingleTargetToApplier": FlagRedirectSingleTargetToApplier,
	"forceSingleTargetLowestArmor":  FlagForceSingleTargetLowestArmor,
	"preventCasting":                FlagPreventCasting,
	"preventHealing":                FlagPreventHealing,
	"reap":                          FlagReap,
	"retaliate":                     FlagRetaliate,
	"backlash":                      FlagBacklash,
	"surviveLethal":                 FlagSurviveLethal,
}

// ParseFlags converts flag names into a set. Unknown names are an error so that
// content typos surface at catalog load rather than silently disabling a flag.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, n := range names {
		flag, ok := flagNames[n]
		if !ok {
			return 0, fmt.Errorf("unknown effect flag %q", n)
		}
		f |= flag
	}
	return f, nil
}

// Has reports whether every bit in flag is set.
func (f Flags) Has(flag Flags) bool {
	return flag != 0 && f&flag == flag
}

// Names returns the sorted flag names in the set.
func (f Flags) Names() []string {
	names := make([]string, 0, 4)
	for name, flag := range flagNames {
		if f&flag != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (f Flags) String() string {
	return strings.Join(f.Names(), "|")
}

// MarshalJSON encodes the set as a list of names.
func (f Flags) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Names())
}

// UnmarshalJSON decodes a list of names.
func (f *Flags) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	parsed, err := ParseFlags(names)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
