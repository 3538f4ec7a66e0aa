package views

import (
	"context"
	"strings"

	"github.com/tgienger/perplex/internal/form"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/ui/keys"
	"github.com/tgienger/perplex/internal/ui/styles"
)

type commentValues struct {
	Content string
}

// newCommentForm posts to a project's conversation. Empty comments are
// rejected by the server.
func newCommentForm(sess *session.Session, projectID int64, s *styles.Styles, k keys.KeyMap) *formModel[commentValues] {
	return &formModel[commentValues]{
		title: "New Comment",
		fields: []*field{
			newAreaField("Comment", "Write a comment (markdown)", 5000),
		},
		form: form.New(func() commentValues { return commentValues{} }),
		read: func(f []*field) commentValues {
			return commentValues{Content: strings.TrimSpace(f[0].value())}
		},
		write: func(f []*field, v commentValues) {
			f[0].setValue(v.Content)
		},
		submit: func(ctx context.Context, v commentValues) (int64, error) {
			c, err := sess.Comments.Create(ctx, projectID, v.Content)
			if err != nil {
				return 0, err
			}
			return c.ID, nil
		},
		success: createdText("Comment"),
		ctx:     sess.Context(),
		button:  "Comment",
		styles:  s,
		keys:    k,
	}
}
