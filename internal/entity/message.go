package entity

import "fmt"

// TaskMessage is the queue payload for one publishing task.
// JSON field names are the wire contract shared with other consumers.
type TaskMessage struct {
	PublishingTaskID  string `json:"publishingTaskId"`
	VideoID           string `json:"videoId"`
	SocialAccountID   string `json:"socialAccountId"`
	CustomTitle       string `json:"customTitle,omitempty"`
	CustomDescription string `json:"customDescription,omitempty"`
	Attempts          int    `json:"attempts"`
}

// MessageID is the broker message id used for tracing on the main queue.
func (m TaskMessage) MessageID() string {
	return m.PublishingTaskID
}

func (m TaskMessage) RetryMessageID() string {
	return fmt.Sprintf("retry-%s-%d", m.PublishingTaskID, m.Attempts)
}

// MessageForTask builds the initial (attempts=0) message for a persisted task.
func MessageForTask(t Task) TaskMessage {
	msg := TaskMessage{
		PublishingTaskID: t.ID.String(),
		VideoID:          t.VideoID.String(),
		SocialAccountID:  t.SocialAccountID.String(),
	}
	if t.CustomTitle != nil {
		msg.CustomTitle = *t.CustomTitle
	}
	if t.CustomDescription != nil {
		msg.CustomDescription = *t.CustomDescription
	}
	return msg
}
