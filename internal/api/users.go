package api

import (
	"context"
	"fmt"
	"net/url"
)

type nameRequest struct {
	Name string `json:"name"`
}

// ResolveUser returns the display name of a user. An unregistered user
// yields a 404 *Error.
func (c *Client) ResolveUser(ctx context.Context, userID string) (string, error) {
	var name string
	if err := c.get(ctx, fmt.Sprintf("/user/resolve/%s", url.PathEscape(userID)), &name); err != nil {
		return "", err
	}
	return name, nil
}

// ChangeName sets the display name of the signed-in user, registering them
// if needed
func (c *Client) ChangeName(ctx context.Context, name string) (string, error) {
	var changed string
	if err := c.put(ctx, "/user/me", nameRequest{Name: name}, &changed); err != nil {
		return "", err
	}
	return changed, nil
}
