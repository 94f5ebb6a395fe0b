package dto

// Reply types let states describe outgoing messages without depending on
// the Telegram client. The transport layer maps them to the wire API.

type InlineButton struct {
	Text string
	Data string // callback payload, <= 64 bytes per Telegram
}

type ReplyMarkup struct {
	Inline   [][]InlineButton
	Keyboard [][]string // one-tap reply keyboard
	Remove   bool       // removes a previously shown reply keyboard
}

type ReplyOptions struct {
	ParseMode string // "HTML" or "" for plain text
	Markup    *ReplyMarkup
}

// Responder is whatever can deliver a message back to the user of the
// current update. States get it through the event context.
type Responder interface {
	Reply(text string, opts *ReplyOptions) error
	AnswerCallback(callbackID string) error
}
