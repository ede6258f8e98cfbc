package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relay-bot/api/internal/conversation"
	"relay-bot/api/internal/dispatch"
)

// ---------------- Пользователь -----------------

const (
	textChallengeIntro = "❗Решите небольшое задание.\nЭто помогает нам отсеять ботов."
	textChallenge      = "❓Решите пример: "
	textWrongAnswer    = "❗Вы написали неверный ответ\nПожалуйста, будьте внимательнее!"
	textPassed         = "✅ Проверка завершена!"

	textDescription = "🇷🇺 *Присоединяйтесь к движению \"Свободная Россия!\"*\n\n" +
		"🔘 Если вы хотите внести свой вклад в освобождение России и помочь нашей стране, присоединяйтесь к нашему народному движению. " +
		"Вместе мы можем сделать нашу страну свободной от преступного, кровавого режима и построить будущее, которое она заслуживает.\n\n" +
		"🔘 Вступайте в наши ряды и поддержите борьбу за справедливость. За вашу поддержку и участие в сопротивлении путинскому режиму предусмотрена зарплата и социальная защита.\n\n" +
		"🔘 Свяжитесь с нами прямо сейчас, нажав кнопку \"💬 Отправить сообщение\". Также обязательно ознакомьтесь с инструкцией.\n\n" +
		"🔘 Будущее России зависит от каждого из нас!"

	textInstructions = "🔘 Важно! Ваше сообщение отправляется анонимно. Если вам нужна обратная связь, " +
		"пожалуйста, укажите в сообщении свои контактные данные (номер телефона, ссылка на соцсеть или юзернейм в Telegram).\n\n" +
		"🔘 Пишите подробно и развернуто. Вы можете прикреплять к своему сообщению видеозаписи, фотографии, голосовые сообщения – всё это будет доставлено нам.\n\n" +
		"🔘 Чтобы отправить сообщение, нажмите кнопку «Отправить сообщение» и напишите его после уведомления от бота.\n\n" +
		"🔘 Вы получите уведомление о статусе доставки Вашего сообщения, как только оно будет получено нами."

	textSubmissionMode = "✉️ Напишите сообщение оператору здесь!\n\n" +
		"❗Вы можете делиться любой важной информацией: видеозаписями и фотографиями воинских частей, координатами штабов и местонахождения российских сил, " +
		"планами или другой ценной информацией. Всё это поможет нам в нашей работе.\n\n" +
		"❗Хотите помочь разведывательной или иной деятельностью против режима? Пишите! Поможем материально и гарантируем соцзащиту.\n\n" +
		"❗Ваше общение с чат-ботом остаётся анонимным. Если вы хотите получить ответ, укажите контакты.\n\n" +
		"◀️ Изменили решение? Нажмите кнопку \"Назад\"."

	textMainMenu = "🔘 Вы снова в главном меню!\n\n▶️ Выберите интересующую вас операцию на клавиатуре."
	textYourID   = "Твой Telegram ID: %d"
	textWait     = "❗Подождите %d секунд перед отправкой следующего сообщения."

	textDelivered   = "✅ Спасибо! Ваше сообщение доставлено операторам."
	textTooShort    = "❗Длина сообщения должна превышать 8 символов, пожалуйста, старайтесь писать понятнее."
	textForbidden   = "❗Сообщение не было доставлено. Символы '<', '>' и '\\' запрещены!"
	textSticker     = "❗Вы не можете отправлять боту стикеры!\nПопробуйте передать информацию текстом, голосовым, фото или видео."
	textUnknownTyp  = "❗Такой тип файла нам неизвестен. Попробуйте другой способ (текст, голосовое, фото, видео)."
	textGroupClosed = "❗Этот файл пришёл после отправки альбома и не был доставлен. Пришлите его отдельным сообщением."
)

// ---------------- Оператор -----------------

const (
	textYouAreOperator = "🔹 Вы оператор с Telegram ID: %d"
	textOperatorHelp   = "📖 Команды оператора:\n" +
		"🔘 /list_operator — список операторов\n" +
		"🔘 /add_operator [telegram_id] — добавить оператора\n" +
		"🔘 /remove_operator [telegram_id] — удалить оператора\n" +
		"🔘 /send_answer [telegram_id] [текст] — ответ пользователю"

	textNeedOperatorID  = "❗Укажите Telegram ID оператора после команды"
	textBadOperatorID   = "❗Неверный формат Telegram ID (он должен быть числом)"
	textChatNotFound    = "❗Чата с этим пользователем не существует. Будущий оператор должен сначала написать боту"
	textOperatorAdded   = "✅ Добавлен оператор: %d"
	textOperatorExists  = "❗Такой оператор уже был добавлен"
	textOperatorRemoved = "✅ Удалён оператор: %d"
	textOperatorMissing = "❗Такого оператора нет"
	textOperatorsList   = "🔘 Операторы системы: %s"
	textStoreFailed     = "❗Не удалось сохранить список операторов: %v"
	textChatCheckFailed = "❗Не удалось проверить чат: %v"

	textAnswerUsage  = "❗Использование: /send_answer <telegram_id> <текст>"
	textAnswerBadID  = "❗Неверный Telegram ID"
	textAnswerPrefix = "📩 Ответ оператора:\n\n"
	textAnswerSent   = "✅ Ответ отправлен пользователю %d"
	textAnswerFailed = "❗Не удалось отправить сообщение: %v"
)

// noticeMessage renders a conversation notice for userID.
func (r *Router) noticeMessage(userID int64, rep conversation.Reply, state conversation.State) tgbotapi.MessageConfig {
	var text string
	switch rep.Notice {
	case conversation.NoticeChallengeIntro:
		text = textChallengeIntro
	case conversation.NoticeChallenge:
		text = textChallenge + rep.Prompt
	case conversation.NoticeWrongAnswer:
		text = textWrongAnswer
	case conversation.NoticePassed:
		text = textPassed
	case conversation.NoticeDescription:
		text = textDescription
	case conversation.NoticeInstructions:
		text = textInstructions
	case conversation.NoticeSubmissionMode:
		text = textSubmissionMode
	case conversation.NoticeMainMenu:
		text = textMainMenu
	case conversation.NoticeYourID:
		text = fmt.Sprintf(textYourID, userID)
	case conversation.NoticeWait:
		text = fmt.Sprintf(textWait, int(r.Cooldown.Seconds()))
	}
	msg := tgbotapi.NewMessage(userID, text)
	if rep.Notice == conversation.NoticeDescription {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	msg.ReplyMarkup = keyboardFor(state)
	return msg
}

// rejectionText maps a validation error to the warning shown to the user.
func rejectionText(err error) string {
	switch {
	case errors.Is(err, dispatch.ErrTooShort):
		return textTooShort
	case errors.Is(err, dispatch.ErrForbiddenChars):
		return textForbidden
	case errors.Is(err, dispatch.ErrSticker):
		return textSticker
	default:
		return textUnknownTyp
	}
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
