package style

import "github.com/muesli/termenv"

// ColorEnabled reports whether the attached terminal can render SGR
// sequences. Dumb terminals and piped output get plain text.
func ColorEnabled() bool {
	return termenv.ColorProfile() != termenv.Ascii
}
