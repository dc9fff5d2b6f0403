package proto

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeData(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		dst     any
		wantErr bool
	}{
		{"valid join", `{"roomId":"r1","userId":"u1","preferredLanguage":"es"}`, &JoinRoomData{}, false},
		{"join without room", `{"userId":"u1"}`, &JoinRoomData{}, true},
		{"message without text", `{"roomId":"r1"}`, &SendMessageData{}, true},
		{"message with wrong type", `{"roomId":"r1","originalText":5}`, &SendMessageData{}, true},
		{"typing", `{"roomId":"r1","userId":"spoofed"}`, &TypingData{}, false},
		{"empty data", ``, &TypingData{}, true},
		{"not an object", `"hello"`, &TypingData{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecodeData(json.RawMessage(tt.raw), tt.dst)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Fatalf("expected ErrInvalidPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
