package contextkeys

import (
	"context"

	"github.com/BatmanBruc/bat-bot-shop/types"
)

type messageTypeKey struct{}
type fileInfoKey struct{}
type userKey struct{}
type sessionKey struct{}
type adminKey struct{}
type callbackDataKey struct{}
type startPayloadKey struct{}

type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypePhoto       MessageType = "photo"
	MessageTypeVideo       MessageType = "video"
	MessageTypeDocument    MessageType = "document"
	MessageTypeUnknown     MessageType = "unknown"
	MessageTypeCommand     MessageType = "command"
	MessageTypeClickButton MessageType = "clickButton"
)

// FileInfo is the file attached to a message, kept as a Telegram file id.
type FileInfo struct {
	FileType MessageType `json:"file_type"`
	FileID   string      `json:"file_id"`
	FileSize int64       `json:"file_size,omitempty"`
	MimeType string      `json:"mime_type,omitempty"`
	FileName string      `json:"file_name,omitempty"`
}

func WithMessageType(ctx context.Context, msgType MessageType) context.Context {
	return context.WithValue(ctx, messageTypeKey{}, msgType)
}

func GetMessageType(ctx context.Context) (MessageType, bool) {
	v := ctx.Value(messageTypeKey{})
	if v == nil {
		return MessageTypeUnknown, false
	}
	return v.(MessageType), true
}

func WithFileInfo(ctx context.Context, info *FileInfo) context.Context {
	return context.WithValue(ctx, fileInfoKey{}, info)
}

func GetFileInfo(ctx context.Context) (*FileInfo, bool) {
	v := ctx.Value(fileInfoKey{})
	if v == nil {
		return nil, false
	}
	return v.(*FileInfo), true
}

func WithUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func GetUser(ctx context.Context) (*types.User, bool) {
	v := ctx.Value(userKey{})
	if v == nil {
		return nil, false
	}
	return v.(*types.User), true
}

func WithSession(ctx context.Context, session *types.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSession(ctx context.Context) (*types.Session, bool) {
	v := ctx.Value(sessionKey{})
	if v == nil {
		return nil, false
	}
	return v.(*types.Session), true
}

func WithAdmin(ctx context.Context, admin bool) context.Context {
	return context.WithValue(ctx, adminKey{}, admin)
}

func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey{}).(bool)
	return v
}

func WithCallbackData(ctx context.Context, data string) context.Context {
	return context.WithValue(ctx, callbackDataKey{}, data)
}

func GetCallbackData(ctx context.Context) (string, bool) {
	v := ctx.Value(callbackDataKey{})
	if v == nil {
		return "", false
	}
	return v.(string), true
}

// WithStartPayload stores the deep-link argument of /start.
func WithStartPayload(ctx context.Context, payload string) context.Context {
	return context.WithValue(ctx, startPayloadKey{}, payload)
}

func GetStartPayload(ctx context.Context) string {
	v, _ := ctx.Value(startPayloadKey{}).(string)
	return v
}
