package models

import (
	"sort"
	"strings"
	"time"
)

type ChatParty struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Email        string `bson:"email" json:"email"`
	ProfileImage string `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	Profession   string `bson:"profession,omitempty" json:"profession,omitempty"`
}

// Chat is the summary document of a two-party conversation.
type Chat struct {
	ID                string    `bson:"_id" json:"id"`
	Participants      []string  `bson:"participants" json:"participants"`
	ParticipantsNames []string  `bson:"participantsNames" json:"participantsNames"`
	LastMessage       string    `bson:"lastMessage" json:"lastMessage"`
	LastMessageTime   time.Time `bson:"lastMessageTime" json:"lastMessageTime"`
	ProviderData      ChatParty `bson:"providerData" json:"providerData"`
	UserData          ChatParty `bson:"userData" json:"userData"`
}

func (c Chat) HasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Message belongs to exactly one chat and is never edited after insert, except for IsRead.
type Message struct {
	ID         string    `bson:"_id" json:"id"`
	ChatID     string    `bson:"chatId" json:"chatId"`
	Text       string    `bson:"text" json:"text"`
	SenderID   string    `bson:"senderId" json:"senderId"`
	SenderName string    `bson:"senderName" json:"senderName"`
	ReceiverID string    `bson:"receiverId" json:"receiverId"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	IsRead     bool      `bson:"isRead" json:"isRead"`
}

// ChatID is the sorted join of the two participant ids, so both sides derive the same key.
func ChatID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}
