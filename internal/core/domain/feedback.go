package domain

import "time"

// DefaultFeedbackLifetime is how long a feedback banner stays visible.
const DefaultFeedbackLifetime = 3 * time.Second

type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

// FeedbackMessage is a transient banner shown to the user.
type FeedbackMessage struct {
	Text string       `json:"text"`
	Kind FeedbackKind `json:"kind"`
}

func SuccessFeedback(text string) FeedbackMessage {
	return FeedbackMessage{Text: text, Kind: FeedbackSuccess}
}

func ErrorFeedback(text string) FeedbackMessage {
	return FeedbackMessage{Text: text, Kind: FeedbackError}
}
