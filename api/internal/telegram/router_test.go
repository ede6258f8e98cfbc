package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relay-bot/api/internal/command"
	"relay-bot/api/internal/conversation"
	"relay-bot/api/internal/media"
	"relay-bot/api/internal/operators"
)

type fakeAPI struct {
	mu     sync.Mutex
	fail   map[int64]bool
	known  map[int64]bool
	panics bool
	// panicked counts Send calls that blew up
	panicked int

	sent   []tgbotapi.Chattable
	groups []tgbotapi.MediaGroupConfig
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{fail: map[int64]bool{}, known: map[int64]bool{}}
}

func chatOf(c tgbotapi.Chattable) int64 {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.ChatID
	case tgbotapi.PhotoConfig:
		return v.ChatID
	case tgbotapi.VideoConfig:
		return v.ChatID
	case tgbotapi.VoiceConfig:
		return v.ChatID
	case tgbotapi.DocumentConfig:
		return v.ChatID
	case tgbotapi.LocationConfig:
		return v.ChatID
	}
	return 0
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		f.panicked++
		panic("transport exploded")
	}
	if f.fail[chatOf(c)] {
		return tgbotapi.Message{}, errors.New("Forbidden: bot was blocked by the user")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) SendMediaGroup(c tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[c.ChatID] {
		return nil, errors.New("Forbidden: bot was blocked by the user")
	}
	f.groups = append(f.groups, c)
	return nil, nil
}

func (f *fakeAPI) GetChat(c tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.known[c.ChatID] {
		return tgbotapi.Chat{}, &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}
	}
	return tgbotapi.Chat{ID: c.ChatID}, nil
}

// texts returns the plain messages sent to chatID, in order.
func (f *fakeAPI) texts(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) to(chatID int64) []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.Chattable
	for _, c := range f.sent {
		if chatOf(c) == chatID {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) groupsTo(chatID int64) []tgbotapi.MediaGroupConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MediaGroupConfig
	for _, g := range f.groups {
		if g.ChatID == chatID {
			out = append(out, g)
		}
	}
	return out
}

func (f *fakeAPI) setPanics(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panics = v
}

func (f *fakeAPI) panicCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.panicked
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.groups = nil
}

const testDelay = 100 * time.Millisecond

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

const (
	user     int64 = 5001
	opA      int64 = 100
	opB      int64 = 200
	opC      int64 = 300
	testDate int = 1767225600 // 2026-01-01 00:00:00 UTC
)

func newTestRouter(t *testing.T, ops ...int64) (*Router, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	reg, err := operators.Load(context.Background(),
		operators.NewFileStore(filepath.Join(t.TempDir(), "config.yaml")), ops)
	if err != nil {
		t.Fatal(err)
	}
	// 2 + 2 = ? всегда
	conv := conversation.NewMachine(
		conversation.RateGate{Cooldown: time.Minute},
		conversation.NewChallengeEngine(func(int) int { return 2 }),
	)
	r := NewRouter(api, reg, conv, Options{
		Location:     time.UTC,
		Cooldown:     time.Minute,
		Log:          quiet(),
		MediaOptions: []media.Option{media.WithDelay(testDelay)},
	})
	return r, api
}

func message(uid int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: uid, FirstName: "Anna", UserName: "anna_k"},
		Chat: &tgbotapi.Chat{ID: uid},
		Date: testDate,
	}
}

func textUpdate(uid int64, text string) tgbotapi.Update {
	m := message(uid)
	m.Text = text
	return tgbotapi.Update{Message: m}
}

func photoUpdate(uid int64, group, fileID, caption string) tgbotapi.Update {
	m := message(uid)
	m.MediaGroupID = group
	m.Caption = caption
	m.Photo = []tgbotapi.PhotoSize{{FileID: fileID + "-small"}, {FileID: fileID}}
	return tgbotapi.Update{Message: m}
}

func documentUpdate(uid int64, group, fileID string) tgbotapi.Update {
	m := message(uid)
	m.MediaGroupID = group
	m.Document = &tgbotapi.Document{FileID: fileID}
	return tgbotapi.Update{Message: m}
}

// waitFor polls until cond holds or two seconds pass.
func waitFor(cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
}

// enterSubmission walks uid through the challenge into submission mode.
func enterSubmission(t *testing.T, r *Router, api *fakeAPI, uid int64) {
	t.Helper()
	ctx := context.Background()
	r.HandleUpdate(ctx, textUpdate(uid, "/start"))
	r.HandleUpdate(ctx, textUpdate(uid, "4"))
	r.HandleUpdate(ctx, textUpdate(uid, command.BtnSendMessage))
	if s, _ := r.Conv.Session(uid); s.State() != conversation.StateSubmission {
		t.Fatalf("state = %v, want submission", s.State())
	}
	api.reset()
}

func TestChallengeFlowTexts(t *testing.T) {
	r, api := newTestRouter(t, opA)
	ctx := context.Background()

	r.HandleUpdate(ctx, textUpdate(user, "привет"))
	r.HandleUpdate(ctx, textUpdate(user, "5"))
	r.HandleUpdate(ctx, textUpdate(user, "4"))
	r.HandleUpdate(ctx, textUpdate(user, command.BtnSendMessage))

	want := []string{
		textChallengeIntro,
		textChallenge + "2 + 2 = ?",
		textWrongAnswer,
		textChallenge + "2 + 2 = ?",
		textPassed,
		textDescription,
		textSubmissionMode,
	}
	got := api.texts(user)
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d:\n%q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, got[i], want[i])
		}
	}

	for _, c := range api.to(user) {
		m := c.(tgbotapi.MessageConfig)
		if m.Text == textDescription && m.ParseMode != tgbotapi.ModeMarkdown {
			t.Errorf("description parse mode = %q", m.ParseMode)
		}
	}
	if len(api.to(opA)) != 0 {
		t.Error("operator received something during the challenge")
	}
}

func TestTextSubmissionRelayed(t *testing.T) {
	r, api := newTestRouter(t, opA, opB)
	enterSubmission(t, r, api, user)

	r.HandleUpdate(context.Background(), textUpdate(user, "есть информация <важно>"))
	if got := api.texts(user); len(got) != 1 || got[0] != textForbidden {
		t.Fatalf("user got %q, want forbidden warning", got)
	}
	api.reset()

	r.HandleUpdate(context.Background(), textUpdate(user, "коротко"))
	if got := api.texts(user); len(got) != 1 || got[0] != textTooShort {
		t.Fatalf("user got %q, want length warning", got)
	}
	api.reset()

	r.HandleUpdate(context.Background(), textUpdate(user, "колонна техники на выезде из города"))
	for _, op := range []int64{opA, opB} {
		got := api.texts(op)
		if len(got) != 1 {
			t.Fatalf("operator %d got %d messages", op, len(got))
		}
		for _, want := range []string{
			"<b>Telegram ID пользователя:</b> 5001",
			"<b>Юзернейм:</b> @anna_k",
			"<b>Дата/время [UTC]:</b> 2026-01-01 00:00:00",
			"<b>Сообщение:</b>\nколонна техники на выезде из города",
		} {
			if !strings.Contains(got[0], want) {
				t.Errorf("operator %d message lacks %q:\n%s", op, want, got[0])
			}
		}
	}
	if got := api.texts(user); len(got) != 1 || got[0] != textDelivered {
		t.Errorf("user got %q, want one acknowledgment", got)
	}
}

func TestSecondSubmissionWithinCooldownIsThrottled(t *testing.T) {
	r, api := newTestRouter(t, opA)
	enterSubmission(t, r, api, user)
	ctx := context.Background()

	r.HandleUpdate(ctx, textUpdate(user, "первое длинное сообщение"))
	r.HandleUpdate(ctx, textUpdate(user, "второе длинное сообщение"))

	if n := len(api.texts(opA)); n != 1 {
		t.Errorf("operator got %d messages, want 1", n)
	}
	got := api.texts(user)
	if len(got) != 2 || got[0] != textDelivered || !strings.Contains(got[1], "Подождите 60 секунд") {
		t.Errorf("user got %q", got)
	}

	// после окна снова можно
	r.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	r.HandleUpdate(ctx, textUpdate(user, "третье длинное сообщение"))
	if n := len(api.texts(opA)); n != 2 {
		t.Errorf("operator got %d messages after cooldown, want 2", n)
	}
}

func TestPartialDeliveryStillAcknowledgesOnce(t *testing.T) {
	r, api := newTestRouter(t, opA, opB, opC)
	enterSubmission(t, r, api, user)
	api.fail[opB] = true

	r.HandleUpdate(context.Background(), textUpdate(user, "сообщение для всех операторов"))

	if len(api.texts(opA)) != 1 || len(api.texts(opC)) != 1 {
		t.Errorf("healthy operators got %d and %d messages", len(api.texts(opA)), len(api.texts(opC)))
	}
	if got := api.texts(user); len(got) != 1 || got[0] != textDelivered {
		t.Errorf("user got %q, want exactly one acknowledgment", got)
	}
}

func TestMediaGroupRelayedAsOneBatch(t *testing.T) {
	r, api := newTestRouter(t, opA, opB)
	enterSubmission(t, r, api, user)
	ctx := context.Background()

	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p1", ""))
	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p2", "три фото со двора"))
	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p3", ""))

	deadline := time.Now().Add(2 * time.Second)
	for len(api.texts(user)) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	for _, op := range []int64{opA, opB} {
		groups := api.groupsTo(op)
		if len(groups) != 1 {
			t.Fatalf("operator %d got %d media groups, want 1", op, len(groups))
		}
		items := groups[0].Media
		if len(items) != 3 {
			t.Fatalf("batch has %d items, want 3", len(items))
		}
		for i, want := range []string{"p1", "p2", "p3"} {
			p := items[i].(tgbotapi.InputMediaPhoto)
			if p.Media != tgbotapi.FileID(want) {
				t.Errorf("item %d = %v, want %s", i, p.Media, want)
			}
			if i > 0 && p.Caption != "" {
				t.Errorf("item %d has caption %q", i, p.Caption)
			}
		}
		first := items[0].(tgbotapi.InputMediaPhoto)
		if !strings.Contains(first.Caption, "<b>Прикреплённый текст:</b>\nтри фото со двора") {
			t.Errorf("first caption = %q", first.Caption)
		}
	}
	if got := api.texts(user); len(got) != 1 || got[0] != textDelivered {
		t.Errorf("user got %q, want one acknowledgment", got)
	}
}

func TestThrottledMediaGroupIsDroppedWhole(t *testing.T) {
	r, api := newTestRouter(t, opA)
	enterSubmission(t, r, api, user)
	ctx := context.Background()

	r.HandleUpdate(ctx, textUpdate(user, "первое длинное сообщение"))
	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p1", "фото после текста"))
	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p2", ""))

	waitFor(func() bool { return len(api.texts(user)) >= 2 })

	if n := len(api.groupsTo(opA)); n != 0 {
		t.Errorf("operator got %d media groups, want 0", n)
	}
	if n := len(api.to(opA)); n != 1 {
		t.Errorf("operator got %d messages, want only the text", n)
	}
	got := api.texts(user)
	if len(got) != 2 || got[0] != textDelivered || !strings.Contains(got[1], "Подождите 60 секунд") {
		t.Errorf("user got %q", got)
	}
}

func TestMediaGroupWithForbiddenCaptionRejected(t *testing.T) {
	r, api := newTestRouter(t, opA)
	enterSubmission(t, r, api, user)
	ctx := context.Background()

	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p1", "a < b"))
	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p2", ""))

	waitFor(func() bool { return len(api.texts(user)) > 0 })

	if got := api.texts(user); len(got) != 1 || got[0] != textForbidden {
		t.Errorf("user got %q", got)
	}
	if len(api.groupsTo(opA))+len(api.to(opA)) != 0 {
		t.Error("rejected group was relayed")
	}
	// отклонённая группа не тратит лимит
	r.HandleUpdate(ctx, textUpdate(user, "сообщение без запрещённых символов"))
	if n := len(api.texts(opA)); n != 1 {
		t.Errorf("operator got %d messages, want 1", n)
	}
}

func TestGroupedDocumentsRelayedAsAlbum(t *testing.T) {
	r, api := newTestRouter(t, opA)
	enterSubmission(t, r, api, user)
	ctx := context.Background()

	r.HandleUpdate(ctx, documentUpdate(user, "g2", "d1"))
	r.HandleUpdate(ctx, documentUpdate(user, "g2", "d2"))
	r.HandleUpdate(ctx, documentUpdate(user, "g2", "d3"))

	waitFor(func() bool { return len(api.texts(user)) > 0 })

	groups := api.groupsTo(opA)
	if len(groups) != 1 || len(groups[0].Media) != 3 {
		t.Fatalf("operator got %d groups", len(groups))
	}
	for i, want := range []string{"d1", "d2", "d3"} {
		d, ok := groups[0].Media[i].(tgbotapi.InputMediaDocument)
		if !ok || d.Media != tgbotapi.FileID(want) {
			t.Errorf("item %d = %#v", i, groups[0].Media[i])
		}
	}
	if got := api.texts(user); len(got) != 1 || got[0] != textDelivered {
		t.Errorf("user got %q, want one acknowledgment", got)
	}
}

func TestLateGroupItemGetsNotice(t *testing.T) {
	r, api := newTestRouter(t, opA)
	enterSubmission(t, r, api, user)
	ctx := context.Background()

	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p1", ""))
	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p2", ""))
	waitFor(func() bool { return len(api.texts(user)) > 0 })

	// альбом уже ушёл, опоздавший элемент не доставляется
	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p3", ""))

	got := api.texts(user)
	if len(got) != 2 || got[0] != textDelivered || got[1] != textGroupClosed {
		t.Errorf("user got %q", got)
	}
	if n := len(api.groupsTo(opA)); n != 1 {
		t.Errorf("operator got %d media groups, want 1", n)
	}
	if r.Media.Pending() != 0 {
		t.Error("late item opened a new group")
	}
}

func TestSingleAttachments(t *testing.T) {
	r, api := newTestRouter(t, opA)
	enterSubmission(t, r, api, user)
	ctx := context.Background()

	m := message(user)
	m.Sticker = &tgbotapi.Sticker{FileID: "st"}
	r.HandleUpdate(ctx, tgbotapi.Update{Message: m})
	if got := api.texts(user); len(got) != 1 || got[0] != textSticker {
		t.Fatalf("sticker: user got %q", got)
	}
	api.reset()

	m = message(user)
	m.Contact = &tgbotapi.Contact{PhoneNumber: "+70000000000"}
	r.HandleUpdate(ctx, tgbotapi.Update{Message: m})
	if got := api.texts(user); len(got) != 1 || got[0] != textUnknownTyp {
		t.Fatalf("contact: user got %q", got)
	}
	api.reset()

	m = message(user)
	m.Location = &tgbotapi.Location{Latitude: 55.75, Longitude: 37.62}
	r.HandleUpdate(ctx, tgbotapi.Update{Message: m})
	out := api.to(opA)
	if len(out) != 2 {
		t.Fatalf("operator got %d sends for a location, want 2", len(out))
	}
	if hdr := out[0].(tgbotapi.MessageConfig); !strings.Contains(hdr.Text, "Прикреплена локация") {
		t.Errorf("location header = %q", hdr.Text)
	}
	if loc := out[1].(tgbotapi.LocationConfig); loc.Latitude != 55.75 || loc.Longitude != 37.62 {
		t.Errorf("location = %+v", loc)
	}
}

func TestOperatorsBypassConversation(t *testing.T) {
	r, api := newTestRouter(t, opA)
	ctx := context.Background()

	r.HandleUpdate(ctx, textUpdate(opA, "/start"))
	r.HandleUpdate(ctx, textUpdate(opA, command.BtnOperatorHelp))
	r.HandleUpdate(ctx, textUpdate(opA, "/list_operator"))

	got := api.texts(opA)
	want := []string{"🔹 Вы оператор с Telegram ID: 100", textOperatorHelp, "🔘 Операторы системы: [100]"}
	if len(got) != len(want) {
		t.Fatalf("operator got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("reply %d = %q, want %q", i, got[i], want[i])
		}
	}
	if r.Conv.Len() != 0 {
		t.Error("operator got a conversation session")
	}
}

func TestAddAndRemoveOperator(t *testing.T) {
	r, api := newTestRouter(t, opA)
	ctx := context.Background()

	steps := []struct {
		text string
		want string
	}{
		{"/add_operator", textNeedOperatorID},
		{"/add_operator abc", textBadOperatorID},
		{"/add_operator 200", textChatNotFound},
		{"/remove_operator 999", textOperatorMissing},
	}
	for _, s := range steps {
		api.reset()
		r.HandleUpdate(ctx, textUpdate(opA, s.text))
		if got := api.texts(opA); len(got) != 1 || got[0] != s.want {
			t.Errorf("%s: got %q, want %q", s.text, got, s.want)
		}
	}

	api.known[opB] = true
	api.reset()
	r.HandleUpdate(ctx, textUpdate(opA, "/add_operator 200"))
	if got := api.texts(opA); len(got) != 1 || got[0] != "✅ Добавлен оператор: 200" {
		t.Fatalf("add: got %q", got)
	}
	if !r.Operators.Contains(opB) {
		t.Fatal("200 is not an operator after add")
	}

	api.reset()
	r.HandleUpdate(ctx, textUpdate(opA, "/add_operator 200"))
	if got := api.texts(opA); len(got) != 1 || got[0] != textOperatorExists {
		t.Errorf("duplicate add: got %q", got)
	}

	api.reset()
	r.HandleUpdate(ctx, textUpdate(opB, "/remove_operator 100"))
	if got := api.texts(opB); len(got) != 1 || got[0] != "✅ Удалён оператор: 100" {
		t.Errorf("remove: got %q", got)
	}
	if r.Operators.Contains(opA) {
		t.Error("100 is still an operator")
	}
}

func TestSendAnswer(t *testing.T) {
	r, api := newTestRouter(t, opA)
	ctx := context.Background()

	r.HandleUpdate(ctx, textUpdate(opA, "/send_answer 5001"))
	if got := api.texts(opA); len(got) != 1 || got[0] != textAnswerUsage {
		t.Fatalf("usage: got %q", got)
	}
	api.reset()

	r.HandleUpdate(ctx, textUpdate(opA, "/send_answer x12 привет"))
	if got := api.texts(opA); len(got) != 1 || got[0] != textAnswerBadID {
		t.Fatalf("bad id: got %q", got)
	}
	api.reset()

	r.HandleUpdate(ctx, textUpdate(opA, "/send_answer 5001 Спасибо, мы  свяжемся"))
	if got := api.texts(user); len(got) != 1 || got[0] != "📩 Ответ оператора:\n\nСпасибо, мы  свяжемся" {
		t.Errorf("user got %q", got)
	}
	if got := api.texts(opA); len(got) != 1 || got[0] != "✅ Ответ отправлен пользователю 5001" {
		t.Errorf("operator got %q", got)
	}
	api.reset()

	api.fail[user] = true
	r.HandleUpdate(ctx, textUpdate(opA, "/send_answer 5001 ещё раз"))
	if got := api.texts(opA); len(got) != 1 || !strings.HasPrefix(got[0], "❗Не удалось отправить сообщение:") {
		t.Errorf("operator got %q", got)
	}
}

func TestClearResetsSessions(t *testing.T) {
	r, api := newTestRouter(t, opA)
	enterSubmission(t, r, api, user)
	r.HandleUpdate(context.Background(), photoUpdate(user, "g9", "p1", ""))

	r.Clear()
	if st := r.Stats(); st.Sessions != 0 || st.PendingGroups != 0 || st.Operators != 1 {
		t.Errorf("stats after clear = %+v", st)
	}

	api.reset()
	r.HandleUpdate(context.Background(), textUpdate(user, "длинное сообщение после сброса"))
	got := api.texts(user)
	if len(got) != 2 || got[0] != textChallengeIntro {
		t.Errorf("user got %q, want a fresh challenge", got)
	}
	time.Sleep(testDelay + 50*time.Millisecond)
	if len(api.groupsTo(opA))+len(api.to(opA)) != 0 {
		t.Error("cleared group was still relayed")
	}
}

func TestHandleUpdateRecoversFromPanic(t *testing.T) {
	r, api := newTestRouter(t, opA)
	api.panics = true
	r.HandleUpdate(context.Background(), textUpdate(user, "/start"))

	api.panics = false
	r.HandleUpdate(context.Background(), textUpdate(user, "/start"))
	if got := api.texts(user); len(got) != 2 {
		t.Errorf("after a panic user got %q", got)
	}
}

func TestMediaGroupFlushRecoversFromPanic(t *testing.T) {
	r, api := newTestRouter(t, opA)
	enterSubmission(t, r, api, user)
	ctx := context.Background()

	r.HandleUpdate(ctx, photoUpdate(user, "g1", "p1", ""))
	api.setPanics(true)
	waitFor(func() bool { return api.panicCount() > 0 })
	if api.panicCount() == 0 {
		t.Fatal("group was not flushed")
	}
	api.setPanics(false)

	// бот жив, лимит уже засчитан
	r.HandleUpdate(ctx, textUpdate(user, "следующее длинное сообщение"))
	got := api.texts(user)
	if len(got) != 1 || !strings.Contains(got[0], "Подождите 60 секунд") {
		t.Errorf("user got %q", got)
	}
}

func TestNonMessageUpdatesIgnored(t *testing.T) {
	r, api := newTestRouter(t, opA)
	r.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 1})
	r.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "x"}})
	if len(api.to(user))+len(api.to(opA)) != 0 {
		t.Error("non-message update produced output")
	}
}
