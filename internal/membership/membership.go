package membership

import (
	"context"
	"log"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Checker tells whether a user is subscribed to the shop channel.
type Checker struct {
	channelID string
}

// NewChecker accepts "@channel" or a numeric chat id. An empty id disables the gate.
func NewChecker(channelID string) *Checker {
	return &Checker{channelID: channelID}
}

func (c *Checker) Enabled() bool {
	return c != nil && c.channelID != ""
}

// IsMember treats any API failure as "not subscribed".
func (c *Checker) IsMember(ctx context.Context, b *bot.Bot, userID int64) bool {
	if !c.Enabled() {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	member, err := b.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: c.channelID,
		UserID: userID,
	})
	if err != nil {
		log.Printf("Error checking channel membership for %d: %v", userID, err)
		return false
	}
	if member == nil {
		return false
	}
	return StatusAllowed(member.Type)
}

func StatusAllowed(status models.ChatMemberType) bool {
	switch status {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator, models.ChatMemberTypeMember:
		return true
	default:
		return false
	}
}
