package notification

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// FCMService sends push notifications through Firebase Cloud Messaging using
// the same Firebase app that backs the document store.
type FCMService struct {
	client *messaging.Client
}

func NewFCMService(ctx context.Context, app *firebase.App) (*FCMService, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return &FCMService{client: client}, nil
}

// SendPush delivers one notification to one device token. Callers treat
// failures as best-effort; nothing in the domain state depends on delivery.
func (s *FCMService) SendPush(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return nil
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		log.Printf("FCM: failed to send to token %s: %v", token, err)
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
