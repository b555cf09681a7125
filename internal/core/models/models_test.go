package models

import "testing"

func TestConversationValidate(t *testing.T) {
	conv := Conversation{ID: "abc", Platform: PlatformClaude}
	if err := conv.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	missing := Conversation{Platform: PlatformClaude}
	if err := missing.Validate(); err == nil {
		t.Error("Validate() accepted a conversation without an id")
	}

	noPlatform := Conversation{ID: "abc"}
	if err := noPlatform.Validate(); err == nil {
		t.Error("Validate() accepted a conversation without a platform")
	}
}

func TestMessageID(t *testing.T) {
	if got := MessageID("abc-123", 0); got != "abc-123-0" {
		t.Errorf("MessageID() = %q", got)
	}
	if got := MessageID("abc-123", 41); got != "abc-123-41" {
		t.Errorf("MessageID() = %q", got)
	}
}

func TestMessageValidate(t *testing.T) {
	msg := Message{
		ID:             MessageID("abc", 0),
		ConversationID: "abc",
		Role:           RoleUser,
		Content:        "hello",
	}
	if err := msg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Message)
	}{
		{"missing conversation id", func(m *Message) { m.ConversationID = "" }},
		{"empty content", func(m *Message) { m.Content = "" }},
		{"unknown role", func(m *Message) { m.Role = "system" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := msg
			tt.mutate(&bad)
			if err := bad.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
