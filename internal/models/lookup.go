package models

import "strings"

// UnknownName is shown when an ID is missing from the lookup table.
const UnknownName = "Unknown"

// UserLookup maps user IDs to display names for one group.
//
// It is always built in full from the group's member list. Insertion order
// follows the roster so name matching is deterministic when two members
// share a name.
type UserLookup struct {
	ids   []string
	names map[string]string
}

// NewUserLookup builds the lookup table from the group's members.
// A nil group yields an empty table.
func NewUserLookup(group *Group) UserLookup {
	l := UserLookup{names: make(map[string]string)}
	if group == nil {
		return l
	}
	for _, m := range group.Members {
		if _, seen := l.names[m.User.ID]; !seen {
			l.ids = append(l.ids, m.User.ID)
		}
		l.names[m.User.ID] = m.User.Name
	}
	return l
}

// Len returns the number of users in the table.
func (l UserLookup) Len() int {
	return len(l.ids)
}

// Name returns the display name for id.
func (l UserLookup) Name(id string) (string, bool) {
	name, ok := l.names[id]
	return name, ok
}

// NameOrUnknown returns the display name for id, or "Unknown".
// Empty names also fall back.
func (l UserLookup) NameOrUnknown(id string) string {
	if name, ok := l.names[id]; ok && name != "" {
		return name
	}
	return UnknownName
}

// NameOrID returns the display name for id, or id itself.
func (l UserLookup) NameOrID(id string) string {
	if name, ok := l.names[id]; ok && name != "" {
		return name
	}
	return id
}

// FindByName returns the first user whose name equals name, ignoring case.
// There is no trimming or fuzzy matching.
func (l UserLookup) FindByName(name string) (string, bool) {
	target := strings.ToLower(name)
	for _, id := range l.ids {
		if strings.ToLower(l.names[id]) == target {
			return id, true
		}
	}
	return "", false
}
