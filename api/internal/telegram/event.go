package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relay-bot/api/internal/dispatch"
)

// inbound is the transport-neutral view of one user message.
// Attachment is nil for plain text.
type inbound struct {
	Sender     dispatch.Sender
	Text       string
	Caption    string
	GroupKey   string
	Attachment *dispatch.Attachment
}

func inboundFrom(msg *tgbotapi.Message) inbound {
	in := inbound{
		Text:     msg.Text,
		Caption:  msg.Caption,
		GroupKey: msg.MediaGroupID,
		Sender:   senderFrom(msg),
	}
	if msg.Text != "" {
		return in
	}

	a := dispatch.Attachment{Kind: dispatch.KindOther}
	switch {
	case len(msg.Photo) > 0:
		// последний размер самый большой
		a = dispatch.Attachment{Kind: dispatch.KindPhoto, FileID: msg.Photo[len(msg.Photo)-1].FileID}
	case msg.Video != nil:
		a = dispatch.Attachment{Kind: dispatch.KindVideo, FileID: msg.Video.FileID}
	case msg.Voice != nil:
		a = dispatch.Attachment{Kind: dispatch.KindVoice, FileID: msg.Voice.FileID}
	case msg.Document != nil:
		a = dispatch.Attachment{Kind: dispatch.KindDocument, FileID: msg.Document.FileID}
	case msg.Location != nil:
		a = dispatch.Attachment{
			Kind:      dispatch.KindLocation,
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
		}
	case msg.Sticker != nil:
		a = dispatch.Attachment{Kind: dispatch.KindSticker, FileID: msg.Sticker.FileID}
	}
	in.Attachment = &a
	return in
}

func senderFrom(msg *tgbotapi.Message) dispatch.Sender {
	s := dispatch.Sender{SentAt: msg.Time()}
	if u := msg.From; u != nil {
		s.ID = u.ID
		s.Username = u.UserName
		s.FirstName = u.FirstName
		s.LastName = u.LastName
	}
	return s
}
