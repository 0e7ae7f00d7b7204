package download

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameReplacer = strings.NewReplacer("+", " ", "/", " ", `\`, " ")

// SuggestedName derives the save-as file name for an image generated from
// prompt, e.g. "a cat+hat" -> "a cat hat-1700000000000.png". The .png
// extension is fixed regardless of how the image was stored.
func SuggestedName(prompt string, now time.Time) string {
	base := nameReplacer.Replace(cases.Lower(language.Und).String(prompt))
	return base + "-" + strconv.FormatInt(now.UnixMilli(), 10) + ".png"
}
