package telegram

import (
	"context"
	"runtime/debug"

	"relay-bot/api/internal/conversation"
	"relay-bot/api/internal/dispatch"
	"relay-bot/api/internal/media"
)

// submit runs the submission pipeline for a forwarded user message:
// validate, pass the rate gate, fan out, acknowledge once.
func (r *Router) submit(ctx context.Context, uid int64, in inbound) {
	if in.Attachment == nil {
		if err := dispatch.ValidateText(in.Text); err != nil {
			r.reject(uid, err)
			return
		}
		if !r.admit(uid) {
			return
		}
		r.Dispatcher.SendText(ctx, in.Sender, in.Text, r.Operators.List())
		r.ack(uid)
		return
	}

	a := *in.Attachment
	if in.GroupKey != "" && a.Kind.Groupable() {
		// проверка лимита и отправка произойдут при сбросе группы
		if !r.Media.Append(in.GroupKey, a, in.Sender, in.Caption) {
			r.send(uid, textGroupClosed, submissionKeyboard())
		}
		return
	}

	if err := dispatch.ValidateAttachment(a.Kind); err != nil {
		r.reject(uid, err)
		return
	}
	if err := dispatch.ValidateCaption(in.Caption); err != nil {
		r.reject(uid, err)
		return
	}
	if !r.admit(uid) {
		return
	}
	r.Dispatcher.SendSingleAttachment(ctx, in.Sender, a, in.Caption, r.Operators.List())
	r.ack(uid)
}

// flushGroup is the media aggregator callback. It runs on a timer
// goroutine, so it has no request context of its own and recovers its
// own panics.
func (r *Router) flushGroup(b media.Batch) {
	uid := b.Owner.ID
	defer func() {
		if rec := recover(); rec != nil {
			r.Log.Error("panic while flushing media group",
				"group", b.Key, "user_id", uid, "panic", rec, "stack", string(debug.Stack()))
		}
	}()

	if err := dispatch.ValidateCaption(b.Caption); err != nil {
		r.reject(uid, err)
		return
	}
	if !r.admit(uid) {
		r.Log.Info("media group dropped", "group", b.Key, "user_id", uid, "items", len(b.Items))
		return
	}
	r.Dispatcher.SendBatch(context.Background(), b.Owner, b.Items, b.Caption, r.Operators.List())
	r.ack(uid)
}

func (r *Router) admit(uid int64) bool {
	switch r.Conv.Admit(uid, r.now()) {
	case conversation.Admitted:
		return true
	case conversation.Throttled:
		r.sendMessage(r.noticeMessage(uid, conversation.Reply{Notice: conversation.NoticeWait}, conversation.StateSubmission))
	default:
		r.Log.Debug("submission without verified session", "user_id", uid)
	}
	return false
}

func (r *Router) reject(uid int64, err error) {
	r.Log.Debug("submission rejected", "user_id", uid, "reason", err)
	r.send(uid, rejectionText(err), submissionKeyboard())
}

func (r *Router) ack(uid int64) {
	r.send(uid, textDelivered, submissionKeyboard())
}
