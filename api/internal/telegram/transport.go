package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relay-bot/api/internal/dispatch"
)

// API is the subset of *tgbotapi.BotAPI the bot needs.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
}

// Telegram принимает не больше 10 элементов в одной медиагруппе.
const maxMediaGroup = 10

// Transport delivers dispatch output through the Bot API.
type Transport struct {
	API API
}

func NewTransport(api API) *Transport { return &Transport{API: api} }

func (t *Transport) SendText(ctx context.Context, chatID int64, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := t.API.Send(msg)
	return err
}

func (t *Transport) SendAttachment(ctx context.Context, chatID int64, a dispatch.Attachment, captionHTML string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := attachmentConfig(chatID, a, captionHTML)
	if err != nil {
		return err
	}
	_, err = t.API.Send(c)
	return err
}

func attachmentConfig(chatID int64, a dispatch.Attachment, caption string) (tgbotapi.Chattable, error) {
	file := tgbotapi.FileID(a.FileID)
	switch a.Kind {
	case dispatch.KindPhoto:
		c := tgbotapi.NewPhoto(chatID, file)
		c.Caption, c.ParseMode = caption, tgbotapi.ModeHTML
		return c, nil
	case dispatch.KindVideo:
		c := tgbotapi.NewVideo(chatID, file)
		c.Caption, c.ParseMode = caption, tgbotapi.ModeHTML
		return c, nil
	case dispatch.KindVoice:
		c := tgbotapi.NewVoice(chatID, file)
		c.Caption, c.ParseMode = caption, tgbotapi.ModeHTML
		return c, nil
	case dispatch.KindDocument:
		c := tgbotapi.NewDocument(chatID, file)
		c.Caption, c.ParseMode = caption, tgbotapi.ModeHTML
		return c, nil
	case dispatch.KindLocation:
		return tgbotapi.NewLocation(chatID, a.Latitude, a.Longitude), nil
	default:
		return nil, fmt.Errorf("%w: %s", dispatch.ErrUnsupported, a.Kind)
	}
}

// SendBatch sends items as one or more media groups. Only the very first
// item carries the caption. A chunk of one item goes out on its own since
// a media group needs at least two.
func (t *Transport) SendBatch(ctx context.Context, chatID int64, items []dispatch.Attachment, captionHTML string) error {
	if len(items) == 0 {
		return dispatch.ErrEmptyBatch
	}
	caption := captionHTML
	for _, chunk := range albumChunks(items) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(chunk) == 1 {
			if err := t.SendAttachment(ctx, chatID, chunk[0], caption); err != nil {
				return err
			}
			caption = ""
			continue
		}
		group, err := mediaGroup(chatID, chunk, caption)
		if err != nil {
			return err
		}
		if _, err := t.API.SendMediaGroup(group); err != nil {
			return err
		}
		caption = ""
	}
	return nil
}

// albumChunks splits items into runs Telegram accepts as one album: at most
// ten items, documents never mixed with photos or videos.
func albumChunks(items []dispatch.Attachment) [][]dispatch.Attachment {
	var out [][]dispatch.Attachment
	start := 0
	for i := 1; i <= len(items); i++ {
		if i == len(items) || i-start == maxMediaGroup ||
			(items[i].Kind == dispatch.KindDocument) != (items[start].Kind == dispatch.KindDocument) {
			out = append(out, items[start:i])
			start = i
		}
	}
	return out
}

func mediaGroup(chatID int64, items []dispatch.Attachment, caption string) (tgbotapi.MediaGroupConfig, error) {
	media := make([]interface{}, 0, len(items))
	for i, it := range items {
		var c, mode string
		if i == 0 && caption != "" {
			c, mode = caption, tgbotapi.ModeHTML
		}
		switch it.Kind {
		case dispatch.KindPhoto:
			m := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(it.FileID))
			m.Caption, m.ParseMode = c, mode
			media = append(media, m)
		case dispatch.KindVideo:
			m := tgbotapi.NewInputMediaVideo(tgbotapi.FileID(it.FileID))
			m.Caption, m.ParseMode = c, mode
			media = append(media, m)
		case dispatch.KindDocument:
			m := tgbotapi.NewInputMediaDocument(tgbotapi.FileID(it.FileID))
			m.Caption, m.ParseMode = c, mode
			media = append(media, m)
		default:
			return tgbotapi.MediaGroupConfig{}, fmt.Errorf("%w in media group: %s", dispatch.ErrUnsupported, it.Kind)
		}
	}
	return tgbotapi.NewMediaGroup(chatID, media), nil
}
