package core

import "time"

// Envelope is one chat message. It is built once by the router, persisted once and
// broadcast once; nothing mutates it afterwards.
type Envelope struct {
	ID               string
	RoomID           string
	SenderID         string
	SenderName       string
	SenderLanguage   string
	OriginalText     string
	TranslatedText   string
	DetectedLanguage string
	Timestamp        time.Time
}

// Translation is the result of the translation collaborator.
type Translation struct {
	Text             string
	DetectedLanguage string
}
