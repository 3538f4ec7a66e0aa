package api

import (
	"context"
	"fmt"
	"time"

	"github.com/tgienger/perplex/internal/models"
)

type meetingRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
}

// ListMeetings returns all meetings of a project
func (c *Client) ListMeetings(ctx context.Context, projectID int64) ([]models.Meeting, error) {
	var meetings []models.Meeting
	if err := c.get(ctx, fmt.Sprintf("/project/%d/meeting", projectID), &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// CreateMeeting schedules a new meeting in a project
func (c *Client) CreateMeeting(ctx context.Context, projectID int64, name, description string, startDate time.Time) (*models.Meeting, error) {
	m := &models.Meeting{}
	err := c.post(ctx, fmt.Sprintf("/project/%d/meeting", projectID), meetingRequest{
		Name:        name,
		Description: description,
		StartDate:   startDate,
	}, m)
	if err != nil {
		return nil, err
	}
	return m, nil
}
