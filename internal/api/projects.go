package api

import (
	"context"
	"fmt"

	"github.com/tgienger/perplex/internal/models"
)

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListProjects returns all projects the user owns or has access to
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.get(ctx, "/project", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// FindProject retrieves a project by ID
func (c *Client) FindProject(ctx context.Context, projectID int64) (*models.Project, error) {
	p := &models.Project{}
	if err := c.get(ctx, fmt.Sprintf("/project/%d", projectID), p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProject creates a new project owned by the current user
func (c *Client) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	p := &models.Project{}
	err := c.post(ctx, "/project", projectRequest{Name: name, Description: description}, p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// EditProject updates a project's name and description
func (c *Client) EditProject(ctx context.Context, projectID int64, name, description string) error {
	return c.put(ctx, fmt.Sprintf("/project/%d", projectID), projectRequest{Name: name, Description: description}, nil)
}
