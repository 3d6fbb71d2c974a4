package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sebakara/early-passion-detection/internal/types"
)

// ListChildren fetches the caller's children. An empty slice is a valid
// result, not an error.
func (c *Client) ListChildren(ctx context.Context) ([]types.Child, error) {
	var children []types.Child
	if err := c.getJSON(ctx, "/children", &children); err != nil {
		return nil, err
	}
	return children, nil
}

// GetChild fetches a single child profile.
func (c *Client) GetChild(ctx context.Context, childID int) (*types.Child, error) {
	var child types.Child
	if err := c.getJSON(ctx, fmt.Sprintf("/children/%d", childID), &child); err != nil {
		return nil, err
	}
	return &child, nil
}

// CreateChild registers a new child profile. in must already be validated.
func (c *Client) CreateChild(ctx context.Context, in types.ChildInput) (*types.Child, error) {
	var child types.Child
	if err := c.sendJSON(ctx, http.MethodPost, "/children", in, &child, true); err != nil {
		return nil, err
	}
	return &child, nil
}

// UpdateChild replaces a child profile's editable fields.
func (c *Client) UpdateChild(ctx context.Context, childID int, in types.ChildInput) (*types.Child, error) {
	var child types.Child
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/children/%d", childID), in, &child, true); err != nil {
		return nil, err
	}
	return &child, nil
}

// DeleteChild removes a child profile.
func (c *Client) DeleteChild(ctx context.Context, childID int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/children/%d", childID), nil, "", true)
	return err
}
