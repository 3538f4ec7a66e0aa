package api

import (
	"context"
	"fmt"

	"github.com/tgienger/perplex/internal/models"
)

// ListActions returns the actions of a project
func (c *Client) ListActions(ctx context.Context, projectID int64) ([]models.Action, error) {
	var actions []models.Action
	if err := c.get(ctx, fmt.Sprintf("/project/%d/action", projectID), &actions); err != nil {
		return nil, err
	}
	return actions, nil
}
