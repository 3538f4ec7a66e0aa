package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/tgienger/perplex/internal/form"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/ui/keys"
	"github.com/tgienger/perplex/internal/ui/styles"
)

type topicValues struct {
	Title       string
	Description string
}

func newTopicForm(sess *session.Session, projectID, meetingID int64, s *styles.Styles, k keys.KeyMap) *formModel[topicValues] {
	return &formModel[topicValues]{
		title: "New Topic",
		fields: []*field{
			newField("Title", "What needs discussing?", 200),
			newAreaField("Description", "Details (markdown, optional)", 2000),
		},
		form: form.New(func() topicValues { return topicValues{} }),
		read: func(f []*field) topicValues {
			return topicValues{
				Title:       strings.TrimSpace(f[0].value()),
				Description: strings.TrimSpace(f[1].value()),
			}
		},
		write: func(f []*field, v topicValues) {
			f[0].setValue(v.Title)
			f[1].setValue(v.Description)
		},
		validate: func(v topicValues) error {
			if v.Title == "" {
				return fmt.Errorf("title is required")
			}
			return nil
		},
		submit: func(ctx context.Context, v topicValues) (int64, error) {
			t, err := sess.Topics.Create(ctx, projectID, meetingID, v.Title, v.Description)
			if err != nil {
				return 0, err
			}
			return t.ID, nil
		},
		success:  createdText("Topic"),
		ctx:      sess.Context(),
		allowNew: true,
		button:   "Create",
		styles:   s,
		keys:     k,
	}
}
