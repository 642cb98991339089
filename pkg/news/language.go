package news

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// IsEnglish reports whether text is detected as English.
func IsEnglish(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return whatlanggo.Detect(text).Lang == whatlanggo.Eng
}
