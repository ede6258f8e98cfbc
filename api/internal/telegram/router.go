package telegram

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relay-bot/api/internal/command"
	"relay-bot/api/internal/conversation"
	"relay-bot/api/internal/dispatch"
	"relay-bot/api/internal/media"
	"relay-bot/api/internal/operators"
)

type Router struct {
	API        API
	Operators  *operators.Registry
	Conv       *conversation.Machine
	Media      *media.Aggregator
	Dispatcher *dispatch.Dispatcher
	Cooldown   time.Duration
	Log        *slog.Logger

	now func() time.Time
}

type Options struct {
	Location *time.Location
	Cooldown time.Duration
	Log      *slog.Logger
	// MediaOptions are passed to the media aggregator.
	MediaOptions []media.Option
}

// NewRouter wires the dispatcher and the media aggregator around api.
func NewRouter(api API, ops *operators.Registry, conv *conversation.Machine, opts Options) *Router {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		API:        api,
		Operators:  ops,
		Conv:       conv,
		Dispatcher: dispatch.New(NewTransport(api), opts.Location, log),
		Cooldown:   opts.Cooldown,
		Log:        log,
		now:        time.Now,
	}
	mopts := append([]media.Option{media.WithLogger(log)}, opts.MediaOptions...)
	r.Media = media.New(r.flushGroup, mopts...)
	return r
}

// HandleUpdate processes one update. A panic is logged and swallowed so
// the next update is still served.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			r.Log.Error("panic while handling update",
				"update_id", upd.UpdateID, "panic", rec, "stack", string(debug.Stack()))
		}
	}()

	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	uid := msg.From.ID

	// операторы никогда не проходят через капчу и режим отправки
	if r.Operators.Contains(uid) {
		r.handleOperator(ctx, uid, command.Parse(msg.Text))
		return
	}
	r.handleUser(ctx, uid, msg)
}

func (r *Router) handleUser(ctx context.Context, uid int64, msg *tgbotapi.Message) {
	cmd := command.Parse(msg.Text)
	res := r.Conv.Handle(uid, cmd)
	r.Log.Debug("user event", "user_id", uid, "command", cmd.Kind.String(), "state", res.State.String())

	for _, rep := range res.Replies {
		r.sendMessage(r.noticeMessage(uid, rep, res.State))
	}
	if res.Forward {
		r.submit(ctx, uid, inboundFrom(msg))
	}
}

// Clear drops every pending media group and every session in one
// exclusive section. Scheduled daily.
func (r *Router) Clear() {
	var sessions int
	groups := r.Media.Clear(func() { sessions = r.Conv.Clear() })
	r.Log.Info("tables cleared", "sessions", sessions, "media_groups", groups)
}

type Stats struct {
	Operators     int `json:"operators"`
	Sessions      int `json:"sessions"`
	PendingGroups int `json:"pending_groups"`
}

func (r *Router) Stats() Stats {
	return Stats{
		Operators:     r.Operators.Len(),
		Sessions:      r.Conv.Len(),
		PendingGroups: r.Media.Pending(),
	}
}

func (r *Router) send(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	r.sendMessage(msg)
}

func (r *Router) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := r.API.Send(msg); err != nil {
		r.Log.Warn("send failed", "chat_id", msg.ChatID, "error", err)
	}
}
