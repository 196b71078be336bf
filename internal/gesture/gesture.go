// Package gesture turns a single hand skeleton into a gesture label using an
// ordered cascade of geometric rules.
package gesture

import "fmt"

// Gesture is a gesture label. Built-in labels are declared below; custom
// poses extend the set at runtime with their own names.
type Gesture string

// Built-in gestures.
const (
	Unknown     Gesture = "unknown"
	Click       Gesture = "click"
	ThumbsUp    Gesture = "thumbs_up"
	ThumbsDown  Gesture = "thumbs_down"
	Pinch       Gesture = "pinch"
	Zoom        Gesture = "zoom"
	IndexPoint  Gesture = "index_point"
	CursorMove  Gesture = "cursor_move"
	RotateLeft  Gesture = "rotate_left"
	RotateRight Gesture = "rotate_right"

	// Vocabulary of the first gesture controller, still understood by the
	// globe client.
	OpenPalm Gesture = "open_palm"
	Fist     Gesture = "fist"
	Pointing Gesture = "pointing"
)

var builtins = map[Gesture]struct{}{
	Unknown: {}, Click: {}, ThumbsUp: {}, ThumbsDown: {}, Pinch: {}, Zoom: {},
	IndexPoint: {}, CursorMove: {}, RotateLeft: {}, RotateRight: {},
	OpenPalm: {}, Fist: {}, Pointing: {},
}

// IsBuiltin reports whether g is one of the gestures declared by this package.
func (g Gesture) IsBuiltin() bool {
	_, ok := builtins[g]
	return ok
}

func (g Gesture) String() string {
	return string(g)
}

// Vocabulary selects which built-in rule cascade a classifier runs.
type Vocabulary string

const (
	// VocabularyDefault is the full rule set with separate pointer and
	// open-palm drag gestures.
	VocabularyDefault Vocabulary = "default"
	// VocabularyLegacy is the four-gesture set: pinch, open_palm, fist, pointing.
	VocabularyLegacy Vocabulary = "legacy"
)

// RulesFor returns the built-in cascade for v.
func RulesFor(v Vocabulary, th Thresholds) ([]Rule, error) {
	switch v {
	case VocabularyDefault, "":
		return DefaultRules(th), nil
	case VocabularyLegacy:
		return LegacyRules(th), nil
	default:
		return nil, fmt.Errorf("unknown gesture vocabulary %q", v)
	}
}
