package dispatch

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MinTextLength is the longest text that is still rejected as too short.
const MinTextLength = 8

var (
	ErrTooShort       = errors.New("text too short")
	ErrForbiddenChars = errors.New("text contains forbidden characters")
	ErrSticker        = errors.New("stickers are not accepted")
	ErrUnsupported    = errors.New("unsupported attachment kind")
	ErrEmptyBatch     = errors.New("empty batch")
)

const forbiddenChars = `<>\`

func ValidateText(text string) error {
	if strings.ContainsAny(text, forbiddenChars) {
		return ErrForbiddenChars
	}
	if utf8.RuneCountInString(text) <= MinTextLength {
		return ErrTooShort
	}
	return nil
}

// ValidateCaption applies the content rule only; short captions are fine.
func ValidateCaption(caption string) error {
	if strings.ContainsAny(caption, forbiddenChars) {
		return ErrForbiddenChars
	}
	return nil
}

func ValidateAttachment(kind Kind) error {
	switch kind {
	case KindPhoto, KindVideo, KindVoice, KindDocument, KindLocation:
		return nil
	case KindSticker:
		return ErrSticker
	default:
		return ErrUnsupported
	}
}
