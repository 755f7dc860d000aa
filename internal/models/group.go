package models

// Group is an expense-sharing group with its member roster.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Goa Trip").
	Name string `json:"name"`

	// CreatedByUserID is the user who created the group. May be empty.
	CreatedByUserID string `json:"created_by_user_id,omitempty"`

	// Members is the roster in server order. It is the only source used to
	// build the id → name lookup table.
	Members []GroupMember `json:"members"`
}

// GroupMember joins a user into a group's roster.
type GroupMember struct {
	User     User      `json:"user"`
	JoinedAt Timestamp `json:"joined_at"`
}

// MemberIDs returns the member user IDs in roster order.
func (g *Group) MemberIDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.User.ID
	}
	return ids
}
