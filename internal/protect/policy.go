package protect

import "strings"

// Notices shown for blocked shortcuts
const (
	NoticePrint = "Printing is disabled for this secure document."
	NoticeSave  = "Downloading is disabled."
)

// KeyVerdict decides what to do with a key press. Ctrl (or Cmd/Meta) with
// P, S or C is cancelled; print and save attempts also raise a notice, copy
// is dropped silently.
//
// PrintScreen and OS-level capture cannot be intercepted from here. The
// watermark is what makes such captures traceable.
func KeyVerdict(k KeyEvent) Verdict {
	if !k.Ctrl && !k.Meta {
		return Verdict{}
	}
	switch strings.ToLower(k.Key) {
	case "p":
		return Verdict{Cancel: true, Notice: NoticePrint}
	case "s":
		return Verdict{Cancel: true, Notice: NoticeSave}
	case "c":
		return Verdict{Cancel: true}
	default:
		return Verdict{}
	}
}

// ContextMenuVerdict always cancels the context menu
func ContextMenuVerdict() Verdict {
	return Verdict{Cancel: true}
}
