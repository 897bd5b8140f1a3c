package browser

import "unicode/utf8"

// keyAction classifies how a KeyPress must be delivered to the page.
type keyAction int

const (
	// actionType delivers the key as typed text input.
	actionType keyAction = iota

	// actionPress delivers the key as a single named key press.
	actionPress

	// actionChord holds the modifiers down around a key press.
	actionChord
)

// classifyKey decides how a client key event is replayed. A single
// printable character is typed as text (the client's Shift has already been
// applied to produce it); a named key is dispatched as a key press, with
// any held modifier, Shift included, chorded around it so that e.g.
// Shift+Tab and Shift+ArrowLeft keep their meaning.
func classifyKey(k KeyPress) keyAction {
	// Editing keys are always pressed, never typed.
	if k.Key == "Backspace" || k.Key == "Delete" {
		return actionPress
	}

	if k.Ctrl || k.Alt || k.Meta {
		return actionChord
	}

	if utf8.RuneCountInString(k.Key) == 1 {
		return actionType
	}

	if k.Shift {
		return actionChord
	}

	return actionPress
}

// Modifiers returns the held modifier names in Playwright's naming, in a
// stable press order.
func (k KeyPress) Modifiers() []string {
	var mods []string
	if k.Ctrl {
		mods = append(mods, "Control")
	}
	if k.Shift {
		mods = append(mods, "Shift")
	}
	if k.Alt {
		mods = append(mods, "Alt")
	}
	if k.Meta {
		mods = append(mods, "Meta")
	}
	return mods
}
