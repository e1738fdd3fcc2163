package audio

import (
	"strconv"
	"strings"
	"unicode"
)

// --- HARMONY ENGINE (Camelot System) ---

// MaxKeyDistance is returned whenever a key is unknown or unreadable.
const MaxKeyDistance = 6

// Camelot is a parsed position on the Camelot wheel.
type Camelot struct {
	Num    int  // 1-12
	Letter byte // 'A' (minor) or 'B' (major)
}

func (c Camelot) String() string {
	return strconv.Itoa(c.Num) + string(c.Letter)
}

// pitchNames follows the Spotify pitch class notation (0 = C).
var pitchNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// wheel maps "<key>_<scale>" to its Camelot position. Sharps and flats are
// both listed so tag and API spellings resolve.
var wheel = map[string]Camelot{
	// --- MAJOR KEYS (B) ---
	"B_major":  {1, 'B'}, "Cb_major": {1, 'B'},
	"F#_major": {2, 'B'}, "Gb_major": {2, 'B'},
	"Db_major": {3, 'B'}, "C#_major": {3, 'B'},
	"Ab_major": {4, 'B'}, "G#_major": {4, 'B'},
	"Eb_major": {5, 'B'}, "D#_major": {5, 'B'},
	"Bb_major": {6, 'B'}, "A#_major": {6, 'B'},
	"F_major":  {7, 'B'},
	"C_major":  {8, 'B'},
	"G_major":  {9, 'B'},
	"D_major":  {10, 'B'},
	"A_major":  {11, 'B'},
	"E_major":  {12, 'B'},

	// --- MINOR KEYS (A) ---
	"Ab_minor": {1, 'A'}, "G#_minor": {1, 'A'},
	"Eb_minor": {2, 'A'}, "D#_minor": {2, 'A'},
	"Bb_minor": {3, 'A'}, "A#_minor": {3, 'A'},
	"F_minor":  {4, 'A'},
	"C_minor":  {5, 'A'},
	"G_minor":  {6, 'A'},
	"D_minor":  {7, 'A'},
	"A_minor":  {8, 'A'},
	"E_minor":  {9, 'A'},
	"B_minor":  {10, 'A'},
	"F#_minor": {11, 'A'}, "Gb_minor": {11, 'A'},
	"Db_minor": {12, 'A'}, "C#_minor": {12, 'A'},
}

// FromKeyScale resolves a key letter ("Ab", "c#") and a scale ("major",
// "Minor") to its wheel position.
func FromKeyScale(keyRaw, scaleRaw string) (Camelot, bool) {
	key := normalizeKey(keyRaw)
	scale := strings.ToLower(strings.TrimSpace(scaleRaw))

	val, exists := wheel[key+"_"+scale]
	return val, exists
}

// FromPitchClass converts a Spotify style pitch class (0-11) and mode
// (0 = minor, 1 = major) to a display name such as "C# minor" and its
// Camelot code.
func FromPitchClass(pitch, mode int) (display, camelot string, ok bool) {
	if pitch < 0 || pitch > 11 {
		return "", "", false
	}
	scale := "minor"
	if mode == 1 {
		scale = "major"
	}
	name := pitchNames[pitch]
	c, found := FromKeyScale(name, scale)
	if !found {
		return "", "", false
	}
	return name + " " + scale, c.String(), true
}

// ParseKeyName reads the free-form key spellings found in file tags and
// metadata APIs: "Am", "C#m", "Ebmin", "F# major", "A minor" or a Camelot
// code such as "8A".
func ParseKeyName(raw string) (Camelot, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Camelot{}, false
	}
	if strings.ContainsAny(s, "0123456789") {
		return ParseCamelot(s)
	}

	// Root note: letter plus optional accidental.
	root := strings.ToUpper(s[:1])
	rest := s[1:]
	if len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		root += rest[:1]
		rest = rest[1:]
	} else if strings.HasPrefix(rest, "♯") {
		root += "#"
		rest = strings.TrimPrefix(rest, "♯")
	} else if strings.HasPrefix(rest, "♭") {
		root += "b"
		rest = strings.TrimPrefix(rest, "♭")
	}

	mode := strings.ToLower(strings.TrimSpace(rest))
	scale := "major"
	switch mode {
	case "", "maj", "major":
	case "m", "min", "minor":
		scale = "minor"
	default:
		return Camelot{}, false
	}
	return FromKeyScale(root, scale)
}

// ParseCamelot splits a code into its wheel number and mode letter. Digits
// and letters may come in either order ("8B", "B8"); whitespace is ignored.
func ParseCamelot(code string) (Camelot, bool) {
	var digits, letters strings.Builder
	for _, r := range code {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case unicode.IsLetter(r):
			letters.WriteRune(unicode.ToUpper(r))
		case unicode.IsSpace(r):
		default:
			return Camelot{}, false
		}
	}
	if digits.Len() == 0 {
		return Camelot{}, false
	}
	num, err := strconv.Atoi(digits.String())
	if err != nil || num < 1 || num > 12 {
		return Camelot{}, false
	}
	letter := letters.String()
	if letter != "A" && letter != "B" {
		return Camelot{}, false
	}
	return Camelot{Num: num, Letter: letter[0]}, true
}

// KeyDistance scores how far apart two Camelot codes are for mixing.
//
//	0  identical key
//	1  relative major/minor (8A <-> 8B) or adjacent number, same letter
//	n  wheel steps, +1 when the letters differ
//	6  either key unknown
func KeyDistance(a, b string) int {
	c1, ok1 := ParseCamelot(a)
	c2, ok2 := ParseCamelot(b)
	if !ok1 || !ok2 {
		return MaxKeyDistance
	}

	if c1.Num == c2.Num {
		if c1.Letter == c2.Letter {
			return 0
		}
		return 1
	}

	w := wheelDistance(c1.Num, c2.Num)
	if w == 1 && c1.Letter == c2.Letter {
		return 1
	}
	if c1.Letter != c2.Letter {
		return w + 1
	}
	return w
}

// wheelDistance is the shortest way around the 12 positions (12 -> 1 wraps).
func wheelDistance(n1, n2 int) int {
	diff := n1 - n2
	if diff < 0 {
		diff = -diff
	}
	if 12-diff < diff {
		return 12 - diff
	}
	return diff
}

func normalizeKey(k string) string {
	k = strings.TrimSpace(k)
	if len(k) > 0 {
		// "ab" -> "Ab", "C#" stays "C#"
		return strings.ToUpper(k[:1]) + strings.ToLower(k[1:])
	}
	return k
}
