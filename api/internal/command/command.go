// Package command turns free-form inbound text into a closed set of
// command variants. Everything that is not recognised as a command is
// Payload.
package command

import (
	"strings"
)

// Кнопки клавиатур. Совпадение только точное.
const (
	BtnInstructions = "📖 Инструкция"
	BtnSendMessage  = "💬 Отправить сообщение"
	BtnBack         = "◀️ Назад"
	BtnNewChallenge = "🔄 Новый пример"
	BtnOperatorHelp = "📖 Инструкция оператора"
)

// glyphs that mark a text as a command even without a leading slash.
var glyphs = []string{"❗", "📖", "💬", "🔄", "◀️"}

type Kind int

const (
	Payload Kind = iota
	Unknown
	Start
	NewChallenge
	Instructions
	SendMessage
	Back
	GetID
	OperatorHelp
	AddOperator
	RemoveOperator
	ListOperators
	SendAnswer
)

var kindNames = map[Kind]string{
	Payload:        "payload",
	Unknown:        "unknown",
	Start:          "start",
	NewChallenge:   "new_challenge",
	Instructions:   "instructions",
	SendMessage:    "send_message",
	Back:           "back",
	GetID:          "get_id",
	OperatorHelp:   "operator_help",
	AddOperator:    "add_operator",
	RemoveOperator: "remove_operator",
	ListOperators:  "list_operator",
	SendAnswer:     "send_answer",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(?)"
}

// Command is the parsed form of one inbound text.
//
// Args holds whitespace-separated arguments of slash commands. For
// SendAnswer, Args[0] is the target id and Body is the rest of the text.
type Command struct {
	Kind Kind
	Text string
	Args []string
	Body string
}

var buttons = map[string]Kind{
	BtnInstructions: Instructions,
	BtnSendMessage:  SendMessage,
	BtnBack:         Back,
	BtnNewChallenge: NewChallenge,
	BtnOperatorHelp: OperatorHelp,
}

var slashCommands = map[string]Kind{
	"start":           Start,
	"get_telegram_id": GetID,
	"help":            OperatorHelp,
	"add_operator":    AddOperator,
	"remove_operator": RemoveOperator,
	"list_operator":   ListOperators,
	"send_answer":     SendAnswer,
}

// IsCommand reports whether text starts with a slash or a menu glyph.
func IsCommand(text string) bool {
	if strings.HasPrefix(text, "/") {
		return true
	}
	for _, g := range glyphs {
		if strings.HasPrefix(text, g) {
			return true
		}
	}
	return false
}

// Parse classifies text.
func Parse(text string) Command {
	cmd := Command{Kind: Payload, Text: text}
	if !IsCommand(text) {
		return cmd
	}
	if k, ok := buttons[text]; ok {
		cmd.Kind = k
		return cmd
	}
	if !strings.HasPrefix(text, "/") {
		cmd.Kind = Unknown
		return cmd
	}

	fields := strings.Fields(text)
	name := strings.TrimPrefix(fields[0], "/")
	// /cmd@botname
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	k, ok := slashCommands[name]
	if !ok {
		cmd.Kind = Unknown
		return cmd
	}
	cmd.Kind = k
	cmd.Args = fields[1:]

	if k == SendAnswer && len(cmd.Args) > 0 {
		// тело ответа берём как есть, без схлопывания пробелов
		rest := strings.TrimSpace(strings.TrimPrefix(text, fields[0]))
		cmd.Body = strings.TrimSpace(strings.TrimPrefix(rest, cmd.Args[0]))
	}
	return cmd
}

// Arg returns the i-th argument or "".
func (c Command) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}
