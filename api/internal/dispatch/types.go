package dispatch

import (
	"context"
	"time"
)

type Kind string

const (
	KindPhoto    Kind = "photo"
	KindVideo    Kind = "video"
	KindVoice    Kind = "voice"
	KindDocument Kind = "document"
	KindLocation Kind = "location"
	KindSticker  Kind = "sticker"
	KindOther    Kind = "other"
)

// Groupable reports whether the kind may be part of a media batch.
// Telegram albums hold photos and videos, or documents only.
func (k Kind) Groupable() bool {
	return k == KindPhoto || k == KindVideo || k == KindDocument
}

// Attachment references a file already stored by the transport.
// Latitude/Longitude are used only for KindLocation.
type Attachment struct {
	Kind      Kind
	FileID    string
	Latitude  float64
	Longitude float64
}

// Sender is the display metadata of the end user behind a submission.
type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	SentAt    time.Time
}

// Transport delivers already formatted (HTML) content to one chat.
type Transport interface {
	SendText(ctx context.Context, chatID int64, html string) error
	SendAttachment(ctx context.Context, chatID int64, a Attachment, captionHTML string) error
	// SendBatch captions only the first item.
	SendBatch(ctx context.Context, chatID int64, items []Attachment, captionHTML string) error
}
