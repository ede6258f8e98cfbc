package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relay-bot/api/internal/command"
	"relay-bot/api/internal/operators"
)

func (r *Router) handleOperator(ctx context.Context, uid int64, cmd command.Command) {
	switch cmd.Kind {
	case command.AddOperator:
		r.addOperator(ctx, uid, cmd)
	case command.RemoveOperator:
		r.removeOperator(ctx, uid, cmd)
	case command.ListOperators:
		r.send(uid, fmt.Sprintf(textOperatorsList, formatIDs(r.Operators.List())), operatorKeyboard())
	case command.SendAnswer:
		r.sendAnswer(uid, cmd)
	case command.OperatorHelp:
		r.send(uid, textOperatorHelp, operatorKeyboard())
	default:
		r.send(uid, fmt.Sprintf(textYouAreOperator, uid), operatorKeyboard())
	}
}

func (r *Router) addOperator(ctx context.Context, uid int64, cmd command.Command) {
	id, ok := r.operatorArg(uid, cmd)
	if !ok {
		return
	}
	if err := r.chatExists(id); err != nil {
		if errors.Is(err, operators.ErrChatNotFound) {
			r.send(uid, textChatNotFound, operatorKeyboard())
			return
		}
		r.Log.Error("get chat failed", "operator_id", id, "error", err)
		r.send(uid, fmt.Sprintf(textChatCheckFailed, err), operatorKeyboard())
		return
	}

	added, err := r.Operators.Add(ctx, id)
	switch {
	case err != nil:
		r.Log.Error("add operator", "operator_id", id, "error", err)
		r.send(uid, fmt.Sprintf(textStoreFailed, err), operatorKeyboard())
	case !added:
		r.send(uid, textOperatorExists, operatorKeyboard())
	default:
		r.Log.Info("operators changed", "added", id, "by", uid, "operators", r.Operators.List())
		r.send(uid, fmt.Sprintf(textOperatorAdded, id), operatorKeyboard())
	}
}

func (r *Router) removeOperator(ctx context.Context, uid int64, cmd command.Command) {
	id, ok := r.operatorArg(uid, cmd)
	if !ok {
		return
	}
	removed, err := r.Operators.Remove(ctx, id)
	switch {
	case err != nil:
		r.Log.Error("remove operator", "operator_id", id, "error", err)
		r.send(uid, fmt.Sprintf(textStoreFailed, err), operatorKeyboard())
	case !removed:
		r.send(uid, textOperatorMissing, operatorKeyboard())
	default:
		r.Log.Info("operators changed", "removed", id, "by", uid, "operators", r.Operators.List())
		r.send(uid, fmt.Sprintf(textOperatorRemoved, id), operatorKeyboard())
	}
}

// operatorArg parses the id argument and answers the operator itself when
// it is missing or malformed.
func (r *Router) operatorArg(uid int64, cmd command.Command) (int64, bool) {
	arg := cmd.Arg(0)
	if arg == "" {
		r.send(uid, textNeedOperatorID, operatorKeyboard())
		return 0, false
	}
	id, err := operators.ParseID(arg)
	if err != nil {
		r.send(uid, textBadOperatorID, operatorKeyboard())
		return 0, false
	}
	return id, true
}

// chatExists returns operators.ErrChatNotFound when the bot never talked
// to id.
func (r *Router) chatExists(id int64) error {
	_, err := r.API.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: id}})
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "chat not found") {
		return fmt.Errorf("%w: %d", operators.ErrChatNotFound, id)
	}
	return err
}

func (r *Router) sendAnswer(uid int64, cmd command.Command) {
	if len(cmd.Args) < 2 || cmd.Body == "" {
		r.send(uid, textAnswerUsage, operatorKeyboard())
		return
	}
	target, err := operators.ParseID(cmd.Arg(0))
	if err != nil {
		r.send(uid, textAnswerBadID, operatorKeyboard())
		return
	}
	if _, err := r.API.Send(tgbotapi.NewMessage(target, textAnswerPrefix+cmd.Body)); err != nil {
		r.Log.Warn("operator answer not delivered", "operator_id", uid, "user_id", target, "error", err)
		r.send(uid, fmt.Sprintf(textAnswerFailed, err), operatorKeyboard())
		return
	}
	r.Log.Info("operator answer delivered", "operator_id", uid, "user_id", target)
	r.send(uid, fmt.Sprintf(textAnswerSent, target), operatorKeyboard())
}
