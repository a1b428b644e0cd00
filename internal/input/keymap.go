package input

import (
	"unicode"

	"github.com/sergiup592/event-automation/internal/macro"
)

// The symbolic key namespace is a closed enumeration: single printable
// characters plus the named constants below. Lookup is an explicit table
// in both directions; a miss is a designated unresolved outcome, never a
// runtime failure.

// namedKeys maps named key constants to Windows virtual-key codes.
var namedKeys = map[macro.Key]uint16{
	"alt":          0x12,
	"alt_l":        0xA4,
	"alt_r":        0xA5,
	"backspace":    0x08,
	"caps_lock":    0x14,
	"cmd":          0x5B,
	"cmd_r":        0x5C,
	"ctrl":         0x11,
	"ctrl_l":       0xA2,
	"ctrl_r":       0xA3,
	"delete":       0x2E,
	"down":         0x28,
	"end":          0x23,
	"enter":        0x0D,
	"esc":          0x1B,
	"f1":           0x70,
	"f2":           0x71,
	"f3":           0x72,
	"f4":           0x73,
	"f5":           0x74,
	"f6":           0x75,
	"f7":           0x76,
	"f8":           0x77,
	"f9":           0x78,
	"f10":          0x79,
	"f11":          0x7A,
	"f12":          0x7B,
	"f13":          0x7C,
	"f14":          0x7D,
	"f15":          0x7E,
	"f16":          0x7F,
	"f17":          0x80,
	"f18":          0x81,
	"f19":          0x82,
	"f20":          0x83,
	"home":         0x24,
	"insert":       0x2D,
	"left":         0x25,
	"menu":         0x5D,
	"num_lock":     0x90,
	"page_down":    0x22,
	"page_up":      0x21,
	"pause":        0x13,
	"print_screen": 0x2C,
	"right":        0x27,
	"scroll_lock":  0x91,
	"shift":        0x10,
	"shift_l":      0xA0,
	"shift_r":      0xA1,
	"space":        0x20,
	"tab":          0x09,
	"up":           0x26,
}

// printableVKs maps printable characters without a direct ASCII virtual
// key to their US-layout OEM codes. Letters and digits are handled
// arithmetically in LookupKey.
var printableVKs = map[rune]uint16{
	';':  0xBA,
	'=':  0xBB,
	',':  0xBC,
	'-':  0xBD,
	'.':  0xBE,
	'/':  0xBF,
	'`':  0xC0,
	'[':  0xDB,
	'\\': 0xDC,
	']':  0xDD,
	'\'': 0xDE,
	' ':  0x20,
}

// vkNames is the reverse of namedKeys, used when translating captured
// virtual-key codes back into symbolic names.
var vkNames = func() map[uint16]macro.Key {
	m := make(map[uint16]macro.Key, len(namedKeys))
	for name, vk := range namedKeys {
		// Prefer the sided modifier names for the sided codes; the
		// generic "ctrl"/"shift"/"alt" aliases share codes never
		// reported by the low-level hook.
		if _, taken := m[vk]; !taken {
			m[vk] = name
		}
	}
	for r, vk := range printableVKs {
		if _, taken := m[vk]; !taken {
			m[vk] = macro.Key(r)
		}
	}
	return m
}()

// LookupKey resolves a symbolic key to a Windows virtual-key code. The
// second result is false for symbols outside the closed enumeration.
func LookupKey(key macro.Key) (uint16, bool) {
	if vk, ok := namedKeys[key]; ok {
		return vk, true
	}
	if !key.Printable() {
		return 0, false
	}
	r := rune(key[0])
	switch {
	case r >= 'a' && r <= 'z':
		return uint16(r - 'a' + 'A'), true
	case r >= 'A' && r <= 'Z':
		return uint16(r), true
	case r >= '0' && r <= '9':
		return uint16(r), true
	}
	if vk, ok := printableVKs[r]; ok {
		return vk, true
	}
	return 0, false
}

// KeyForVK translates a captured virtual-key code into its symbolic
// name. Codes outside the enumeration resolve to false; the capture
// engine records such events anyway and replay skips them with a
// warning per the unmapped-symbol policy.
func KeyForVK(vk uint16) (macro.Key, bool) {
	switch {
	case vk >= 'A' && vk <= 'Z':
		return macro.Key(unicode.ToLower(rune(vk))), true
	case vk >= '0' && vk <= '9':
		return macro.Key(rune(vk)), true
	}
	if name, ok := vkNames[vk]; ok {
		return name, true
	}
	return "", false
}

// KnownButton reports whether the button symbol belongs to the closed
// button enumeration.
func KnownButton(b macro.Button) bool {
	switch b {
	case macro.ButtonLeft, macro.ButtonRight, macro.ButtonMiddle:
		return true
	}
	return false
}
