package events

import "github.com/onchainnft/nftcreator/library"

const (
	ErrStructRequired = library.Error("decode target must be a struct")
	ErrUnboundField   = library.Error("struct field matches no event input")
	ErrMissingValue   = library.Error("event input has no value")
	ErrTypeMismatched = library.Error("type mismatch")
	ErrUnknownEvent   = library.Error("unknown event")
	ErrMalformedTopic = library.Error("malformed indexed topic")
)
