package types

import "github.com/onchainnft/nftcreator/library"

const (
	ErrInvalidFileType = library.Error("file type must be html or svg")
	ErrHueOutOfRange   = library.Error("hue out of range")
)
