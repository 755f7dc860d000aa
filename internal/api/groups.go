package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/mmynk/splitmint/internal/models"
)

// CreateGroupRequest is the body of POST /groups/.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// AddMemberRequest is the body of POST /groups/{id}/members.
// Exactly one of Name or Email is set; the other is omitted from the payload.
type AddMemberRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ListGroups returns the caller's groups.
func (c *Client) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := c.doJSON(ctx, "groups.list", http.MethodGet, "/groups/", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup creates a group owned by the caller.
func (c *Client) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	if err := c.doJSON(ctx, "groups.create", http.MethodPost, "/groups/", CreateGroupRequest{Name: name}, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// GetGroup returns one group with its member roster.
func (c *Client) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	path := "/groups/" + url.PathEscape(groupID)
	if err := c.doJSON(ctx, "groups.get", http.MethodGet, path, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// AddMember adds a placeholder user (by name) or an existing user (by email).
// The response body is ignored.
func (c *Client) AddMember(ctx context.Context, groupID string, req AddMemberRequest) error {
	if (req.Name == "") == (req.Email == "") {
		return errors.New("exactly one of name or email is required")
	}
	path := "/groups/" + url.PathEscape(groupID) + "/members"
	return c.doJSON(ctx, "groups.add_member", http.MethodPost, path, req, nil)
}
