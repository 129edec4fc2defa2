// @focus: #sys { io } #input { keys }
package terminal

import "strconv"

// Key represents a parsed input key
type Key uint16

// Key constants - designed for expansion
const (
	KeyNone Key = iota
	KeyRune     // Printable character (check Event.Rune)

	// Control keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab // Shift+Tab
	KeyBackspace
	KeyDelete

	// Navigation
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Ctrl+letter (Ctrl+A = 0x01, Ctrl+Z = 0x1A), contiguous for arithmetic
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlH // Raw 0x08 decodes as Backspace
	KeyCtrlI // Raw 0x09 decodes as Tab
	KeyCtrlJ // Raw 0x0A decodes as Enter
	KeyCtrlK
	KeyCtrlL
	KeyCtrlM // Raw 0x0D decodes as Enter
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ

	// Ctrl+special
	KeyCtrlSpace
	KeyCtrlBackslash
	KeyCtrlBracketRight
	KeyCtrlCaret
	KeyCtrlUnderscore
)

// Modifier flags
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
)

// IsCtrlLetter reports whether k is one of KeyCtrlA..KeyCtrlZ
func (k Key) IsCtrlLetter() bool {
	return k >= KeyCtrlA && k <= KeyCtrlZ
}

// CtrlLetter returns the lowercase letter of a Ctrl+letter key, 0 otherwise
func (k Key) CtrlLetter() byte {
	if !k.IsCtrlLetter() {
		return 0
	}
	return 'a' + byte(k-KeyCtrlA)
}

// String returns the canonical key name, "rune" for KeyRune and "none" for KeyNone
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyRune:
		return "rune"
	}
	if name, ok := keyToName[k]; ok {
		return name
	}
	return "unknown"
}

// sequence is the decoded meaning of one escape sequence body
type sequence struct {
	key Key
	mod Modifier
}

// CSI bodies (after ESC [) without modifier parameters
var csiBase = map[string]Key{
	"A":   KeyUp,
	"B":   KeyDown,
	"C":   KeyRight,
	"D":   KeyLeft,
	"H":   KeyHome,
	"F":   KeyEnd,
	"1~":  KeyHome,
	"7~":  KeyHome, // rxvt
	"4~":  KeyEnd,
	"8~":  KeyEnd, // rxvt
	"2~":  KeyInsert,
	"3~":  KeyDelete,
	"5~":  KeyPageUp,
	"6~":  KeyPageDown,
	"11~": KeyF1,
	"12~": KeyF2,
	"13~": KeyF3,
	"14~": KeyF4,
	"15~": KeyF5,
	"17~": KeyF6,
	"18~": KeyF7,
	"19~": KeyF8,
	"20~": KeyF9,
	"21~": KeyF10,
	"23~": KeyF11,
	"24~": KeyF12,
}

// SS3 bodies (after ESC O)
var ss3Base = map[string]Key{
	"A": KeyUp,
	"B": KeyDown,
	"C": KeyRight,
	"D": KeyLeft,
	"H": KeyHome,
	"F": KeyEnd,
	"P": KeyF1,
	"Q": KeyF2,
	"R": KeyF3,
	"S": KeyF4,
}

// xterm modifier parameter: 1 + shift(1) + alt(2) + ctrl(4)
var xtermMods = []Modifier{
	ModShift,
	ModAlt,
	ModShift | ModAlt,
	ModCtrl,
	ModCtrl | ModShift,
	ModCtrl | ModAlt,
	ModCtrl | ModShift | ModAlt,
}

var csiMap = buildCSIMap()

var ss3Map = func() map[string]sequence {
	m := make(map[string]sequence, len(ss3Base))
	for body, k := range ss3Base {
		m[body] = sequence{key: k}
	}
	return m
}()

// buildCSIMap adds the modified forms: "1;<p>A" for letter finals, "<n>;<p>~" for tilde finals
func buildCSIMap() map[string]sequence {
	m := make(map[string]sequence, len(csiBase)*(len(xtermMods)+1)+1)
	for body, k := range csiBase {
		m[body] = sequence{key: k}
		for _, mod := range xtermMods {
			param := strconv.Itoa(int(mod) + 1)
			if last := body[len(body)-1]; last == '~' {
				m[body[:len(body)-1]+";"+param+"~"] = sequence{key: k, mod: mod}
			} else if len(body) == 1 {
				m["1;"+param+body] = sequence{key: k, mod: mod}
			}
		}
	}
	m["Z"] = sequence{key: KeyBacktab, mod: ModShift}
	return m
}

// lookupCSI does not allocate: the string([]byte) conversion in a map index is optimized away
func lookupCSI(body []byte) (Key, Modifier, bool) {
	if s, ok := csiMap[string(body)]; ok {
		return s.key, s.mod, true
	}
	return KeyNone, ModNone, false
}

func lookupSS3(body []byte) (Key, Modifier, bool) {
	if s, ok := ss3Map[string(body)]; ok {
		return s.key, s.mod, true
	}
	return KeyNone, ModNone, false
}
