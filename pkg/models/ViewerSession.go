package models

import (
	"fmt"
)

// ViewerSession identifies one browser's gallery viewer. It is what gets
// stored in the session cookie.
type ViewerSession struct {
	ID string
}

var (
	ErrIndexOutOfRange = fmt.Errorf("image index out of range")
)
