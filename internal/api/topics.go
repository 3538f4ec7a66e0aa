package api

import (
	"context"
	"fmt"

	"github.com/tgienger/perplex/internal/models"
)

type topicRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type orderRequest struct {
	Before int64 `json:"before"`
	After  int64 `json:"after"`
}

func topicsPath(projectID, meetingID int64) string {
	return fmt.Sprintf("/project/%d/meeting/%d/topic", projectID, meetingID)
}

// ListTopics returns the topics of a meeting in their stored order
func (c *Client) ListTopics(ctx context.Context, projectID, meetingID int64) ([]models.Topic, error) {
	var topics []models.Topic
	if err := c.get(ctx, topicsPath(projectID, meetingID), &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// CreateTopic adds a topic to a meeting
func (c *Client) CreateTopic(ctx context.Context, projectID, meetingID int64, title, description string) (*models.Topic, error) {
	t := &models.Topic{}
	err := c.post(ctx, topicsPath(projectID, meetingID), topicRequest{Title: title, Description: description}, t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SetTopicStatus closes the topic when closed is true and reopens it otherwise
func (c *Client) SetTopicStatus(ctx context.Context, projectID, meetingID, topicID int64, closed bool) error {
	path := fmt.Sprintf("%s/%d/status", topicsPath(projectID, meetingID), topicID)
	if closed {
		return c.post(ctx, path, nil, nil)
	}
	return c.delete(ctx, path, nil)
}

// ReorderTopic moves a topic between two neighbors. Either neighbor may be
// -1, meaning there is none on that side.
func (c *Client) ReorderTopic(ctx context.Context, projectID, meetingID, topicID, before, after int64) error {
	path := fmt.Sprintf("%s/%d/order", topicsPath(projectID, meetingID), topicID)
	return c.put(ctx, path, orderRequest{Before: before, After: after}, nil)
}
