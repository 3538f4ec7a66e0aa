package api

import (
	"context"
	"fmt"

	"github.com/tgienger/perplex/internal/models"
)

// ListTags returns all tags of a project
func (c *Client) ListTags(ctx context.Context, projectID int64) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.get(ctx, fmt.Sprintf("/project/%d/tag", projectID), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
