package dispatch

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Header renders sender metadata as the HTML block operators see above
// every relayed submission.
func Header(s Sender, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Telegram ID пользователя:</b> %d\n", s.ID)
	if s.Username != "" {
		fmt.Fprintf(&b, "<b>Юзернейм:</b> @%s\n", html.EscapeString(s.Username))
	}
	if s.FirstName != "" {
		fmt.Fprintf(&b, "<b>Имя:</b> %s\n", html.EscapeString(s.FirstName))
	}
	if s.LastName != "" {
		fmt.Fprintf(&b, "<b>Фамилия:</b> %s\n", html.EscapeString(s.LastName))
	}
	fmt.Fprintf(&b, "<b>Дата/время [%s]:</b> %s\n", zoneLabel(loc), s.SentAt.In(loc).Format(timeLayout))
	return b.String()
}

func zoneLabel(loc *time.Location) string {
	if loc.String() == "Europe/Moscow" {
		return "МСК"
	}
	return loc.String()
}

func textBody(header, text string) string {
	return header + "<b>Сообщение:</b>\n" + html.EscapeString(text)
}

// captionBody returns just the header when caption is empty.
func captionBody(header, caption string) string {
	if caption == "" {
		return header
	}
	return header + "<b>Прикреплённый текст:</b>\n" + html.EscapeString(caption)
}

func locationBody(header string) string {
	return header + "<b>Прикреплена локация</b>"
}
