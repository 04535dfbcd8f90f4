package garden

import (
	"encoding/json"
	"regexp"
)

type ColorKind int

const (
	ColorDefault ColorKind = iota
	ColorHex
	ColorNamed
)

var hexColorRE = regexp.MustCompile(`^#([0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})$`)

// NamedColors is the whitelist accepted besides hex values.
var NamedColors = []string{
	"red", "orange", "yellow", "green", "teal", "cyan", "blue",
	"indigo", "purple", "pink", "white", "black", "gold", "coral",
}

var namedColorSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(NamedColors))
	for _, c := range NamedColors {
		m[c] = struct{}{}
	}
	return m
}()

// Color is a validated decoration tint. The zero value means "default rendering".
type Color struct {
	kind  ColorKind
	value string
}

// ParseColor validates s once. Anything that is neither a 3/6-digit hex value nor
// a whitelisted name becomes the default color.
func ParseColor(s string) Color {
	if hexColorRE.MatchString(s) {
		return Color{kind: ColorHex, value: s}
	}
	if _, ok := namedColorSet[s]; ok {
		return Color{kind: ColorNamed, value: s}
	}
	return Color{}
}

func (c Color) Kind() ColorKind { return c.kind }

func (c Color) IsDefault() bool { return c.kind == ColorDefault }

// String returns the stored value, or "" for the default color.
func (c Color) String() string { return c.value }

func (c Color) MarshalJSON() ([]byte, error) {
	if c.IsDefault() {
		return []byte("null"), nil
	}
	return json.Marshal(c.value)
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*c = Color{}
		return nil
	}
	*c = ParseColor(*s)
	return nil
}
