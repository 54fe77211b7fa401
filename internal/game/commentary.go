package game

import (
	"fmt"
	"sync/atomic"
)

// Table names one pool of flavor text.
type Table int

const (
	// TableNoMode: the player talks before choosing a mode. Lines may carry a
	// Placeholder for a crying mark.
	TableNoMode Table = iota
	// TableEncourage: appended to a close player guess.
	TableEncourage
	// TableComplaint: the player sends something that is not a guess. Lines
	// may carry a Placeholder for a sad mark.
	TableComplaint
	// TableFlourish: prefixed to the engine's guess when it is close.
	TableFlourish
)

var tableNames = map[Table]string{
	TableNoMode:    "no_mode",
	TableEncourage: "encourage",
	TableComplaint: "complaint",
	TableFlourish:  "flourish",
}

func (t Table) String() string {
	if s, ok := tableNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Table(%d)", int(t))
}

// ParseTable maps a stored table name back to a Table.
func ParseTable(s string) (Table, bool) {
	for t, name := range tableNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

// Tables supplies commentary pools. The engine picks uniformly from whatever
// it gets and says nothing when a pool is empty.
type Tables interface {
	Lines(t Table) []string
}

// StaticTables is a fixed set of pools.
type StaticTables map[Table][]string

func (s StaticTables) Lines(t Table) []string { return s[t] }

// DefaultTables are the lines the bot shipped with.
func DefaultTables() StaticTables {
	return StaticTables{
		TableNoMode:    {"不想陪我玩嗎$，我很孤單餒~", "不考慮再玩一下嗎$", "你忍心不跟我玩嗎$"},
		TableEncourage: {"哎呦答案快出來了喔~", "加油，只差一步了~", "不錯喔~"},
		TableComplaint: {"不想繼續猜嗎$，我好不容易想到數字餒~"},
		TableFlourish:  {"看來快出來了，我覺得是", "那很簡單嘛，答案是不是", "哎呦，那就是"},
	}
}

// SwappableTables serves a set of pools that can be replaced while the bot
// runs. Pools missing from a new set keep the defaults.
type SwappableTables struct {
	cur atomic.Pointer[StaticTables]
}

// NewSwappableTables starts with DefaultTables.
func NewSwappableTables() *SwappableTables {
	s := &SwappableTables{}
	d := DefaultTables()
	s.cur.Store(&d)
	return s
}

// Swap installs next. Empty pools in next fall back to the defaults.
func (s *SwappableTables) Swap(next StaticTables) {
	merged := DefaultTables()
	for t, lines := range next {
		if len(lines) > 0 {
			merged[t] = append([]string(nil), lines...)
		}
	}
	s.cur.Store(&merged)
}

func (s *SwappableTables) Lines(t Table) []string {
	return (*s.cur.Load())[t]
}
