package domain

import (
	"testing"
	"time"
)

func TestSessionWithMessageIsImmutable(t *testing.T) {
	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	s := Session{ID: "s1", Title: "New chat 1", Messages: []Message{}}

	one := s.WithMessage(Message{ID: "m1", Role: RoleUser, Content: "hi"}, at)
	two := one.WithMessage(Message{ID: "m2", Role: RoleAssistant, Content: "hello"}, at.Add(time.Second))

	if len(s.Messages) != 0 || len(one.Messages) != 1 || len(two.Messages) != 2 {
		t.Fatalf("unexpected lengths %d %d %d", len(s.Messages), len(one.Messages), len(two.Messages))
	}
	if !two.UpdatedAt.Equal(at.Add(time.Second)) {
		t.Fatalf("UpdatedAt not bumped")
	}
	if !one.HasUserText() || s.HasUserText() {
		t.Fatalf("HasUserText mismatch")
	}
	attachmentOnly := s.WithMessage(Message{ID: "m0", Role: RoleUser, Attachments: []Attachment{{Name: "a.pdf"}}}, at)
	if attachmentOnly.HasUserText() {
		t.Fatalf("attachment-only message should not count as text")
	}

	renamed := two.WithTitle("Pricing", at)
	renamed.Messages[0].Content = "changed"
	if two.Messages[0].Content != "hi" {
		t.Fatalf("WithTitle must not alias messages")
	}
}
