package api

import (
	"context"
	"fmt"

	"github.com/tgienger/perplex/internal/models"
)

type commentRequest struct {
	Content string `json:"content"`
}

func projectCommentsPath(projectID int64) string {
	return fmt.Sprintf("/project/%d/comment/project/%d", projectID, projectID)
}

// ListComments returns a project's conversation, oldest first
func (c *Client) ListComments(ctx context.Context, projectID int64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.get(ctx, projectCommentsPath(projectID), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment posts a markdown comment to a project's conversation
func (c *Client) CreateComment(ctx context.Context, projectID int64, content string) (*models.Comment, error) {
	comment := &models.Comment{}
	if err := c.post(ctx, projectCommentsPath(projectID), commentRequest{Content: content}, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
