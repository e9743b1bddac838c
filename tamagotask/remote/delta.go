package remote

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// ProgressDelta is a partial progress update. Nil fields are untouched on
// the remote record; set fields win at field level (last write observed
// wins). Slice fields are set-unions, never replacements, so two devices
// buying different items cannot clobber each other's purchases.
type ProgressDelta struct {
	XP             *int64
	Gems           *int64
	Tasks          *int64
	PetXP          *int64
	Streak         *StreakRecord
	SelectedTitle  *string
	Purchases      []string
	UnlockedSkills []string
	UnlockedTitles []string
}

// IsEmpty reports whether the delta carries no fields at all.
func (d ProgressDelta) IsEmpty() bool {
	return d.XP == nil && d.Gems == nil && d.Tasks == nil && d.PetXP == nil &&
		d.Streak == nil && d.SelectedTitle == nil &&
		len(d.Purchases) == 0 && len(d.UnlockedSkills) == 0 && len(d.UnlockedTitles) == 0
}

// SetFields returns the dotted-path document for a $set update. Only set
// fields appear, which is what makes the remote write a field-level merge
// instead of a record overwrite.
func (d ProgressDelta) SetFields() bson.M {
	set := bson.M{}
	if d.XP != nil {
		set["xp"] = *d.XP
	}
	if d.Gems != nil {
		set["gems"] = *d.Gems
	}
	if d.Tasks != nil {
		set["tasks"] = *d.Tasks
	}
	if d.PetXP != nil {
		set["pets.xp"] = *d.PetXP
	}
	if d.Streak != nil {
		set["streak.current"] = d.Streak.Current
		set["streak.longest"] = d.Streak.Longest
		set["streak.last_active_date"] = d.Streak.LastActiveDate
	}
	if d.SelectedTitle != nil {
		set["selected_title"] = *d.SelectedTitle
	}
	return set
}

// AddToSetFields returns the $addToSet document for the delta's slice
// fields.
func (d ProgressDelta) AddToSetFields() bson.M {
	add := bson.M{}
	if len(d.Purchases) > 0 {
		add["purchases"] = bson.M{"$each": d.Purchases}
	}
	if len(d.UnlockedSkills) > 0 {
		add["unlocked_skills"] = bson.M{"$each": d.UnlockedSkills}
	}
	if len(d.UnlockedTitles) > 0 {
		add["unlocked_titles"] = bson.M{"$each": d.UnlockedTitles}
	}
	return add
}

// ApplyTo merges the delta into a plain document the way the server does:
// dotted $set paths descend into nested maps, $addToSet slices union. Used
// by tests and in-memory fakes to mirror the server-side merge semantics.
func (d ProgressDelta) ApplyTo(doc map[string]any) {
	for path, value := range d.SetFields() {
		setPath(doc, path, value)
	}
	for field, each := range d.AddToSetFields() {
		values := each.(bson.M)["$each"].([]string)
		existing, _ := doc[field].([]string)
		for _, v := range values {
			if !containsString(existing, v) {
				existing = append(existing, v)
			}
		}
		doc[field] = existing
	}
}

func setPath(doc map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		child, ok := doc[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			doc[part] = child
		}
		doc = child
	}
	doc[parts[len(parts)-1]] = value
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Int64 is a pointer helper for building deltas.
func Int64(v int64) *int64 { return &v }

// String is a pointer helper for building deltas.
func String(v string) *string { return &v }
