package domain

import "time"

// SenderNameMaxLen — предельная длина имени отправителя в символах.
const SenderNameMaxLen = 120

// ContactMessage — обращение посетителя через форму обратной связи.
type ContactMessage struct {
	ID          int64
	SenderName  string
	SenderEmail string
	Message     string
	SentAt      time.Time
	IsRead      bool
}

func NewContactMessage(name, email, message string) *ContactMessage {
	return &ContactMessage{
		SenderName:  name,
		SenderEmail: email,
		Message:     message,
	}
}
