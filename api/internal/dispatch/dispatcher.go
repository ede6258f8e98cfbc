// Package dispatch fans finalized submissions out to operators.
//
// Validation happens once, before any delivery. Delivery itself is
// best-effort per operator: a failure is logged and the remaining
// operators are still attempted.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Dispatcher struct {
	Transport Transport
	Location  *time.Location
	Log       *slog.Logger
}

func New(t Transport, loc *time.Location, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{Transport: t, Location: loc, Log: log}
}

// Report summarises one fan-out.
type Report struct {
	Submission string
	Delivered  int
	Failed     int
}

func (d *Dispatcher) SendText(ctx context.Context, s Sender, text string, targets []int64) Report {
	body := textBody(Header(s, d.Location), text)
	return d.fanOut(s, "text", targets, func(chatID int64) error {
		return d.Transport.SendText(ctx, chatID, body)
	})
}

// SendSingleAttachment relays one attachment. Locations go out as a header
// message followed by the location itself.
func (d *Dispatcher) SendSingleAttachment(ctx context.Context, s Sender, a Attachment, caption string, targets []int64) Report {
	header := Header(s, d.Location)
	if a.Kind == KindLocation {
		body := locationBody(header)
		return d.fanOut(s, string(a.Kind), targets, func(chatID int64) error {
			if err := d.Transport.SendText(ctx, chatID, body); err != nil {
				return err
			}
			return d.Transport.SendAttachment(ctx, chatID, a, "")
		})
	}
	body := captionBody(header, caption)
	return d.fanOut(s, string(a.Kind), targets, func(chatID int64) error {
		return d.Transport.SendAttachment(ctx, chatID, a, body)
	})
}

// SendBatch relays an ordered media batch; only the first item gets the caption.
func (d *Dispatcher) SendBatch(ctx context.Context, s Sender, items []Attachment, caption string, targets []int64) Report {
	if len(items) == 0 {
		d.Log.Warn("empty batch dropped", "user_id", s.ID, "error", ErrEmptyBatch)
		return Report{}
	}
	body := captionBody(Header(s, d.Location), caption)
	return d.fanOut(s, "batch", targets, func(chatID int64) error {
		return d.Transport.SendBatch(ctx, chatID, items, body)
	})
}

func (d *Dispatcher) fanOut(s Sender, kind string, targets []int64, send func(chatID int64) error) Report {
	rep := Report{Submission: uuid.NewString()}
	for _, chatID := range targets {
		if err := send(chatID); err != nil {
			rep.Failed++
			d.Log.Warn("delivery to operator failed",
				"submission_id", rep.Submission,
				"operator_id", chatID,
				"kind", kind,
				"error", err,
			)
			continue
		}
		rep.Delivered++
	}
	d.Log.Info("submission relayed",
		"submission_id", rep.Submission,
		"user_id", s.ID,
		"kind", kind,
		"delivered", rep.Delivered,
		"failed", rep.Failed,
	)
	return rep
}
