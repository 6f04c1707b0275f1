// Package styling resolves dot-separated style shorthand (`.red.large`)
// into concrete CSS declaration sets. Resolution is a pure lookup: shorthand
// names compose onto any element, there is no inheritance between element
// kinds, and later classes win per property.
package styling

import "sort"

// Declaration is one resolved CSS property/value pair.
type Declaration struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// DeclSet is a deduplicated declaration set in canonical (property-sorted)
// order. Two shorthand chains that resolve to the same properties compare
// equal regardless of the order they were written in.
type DeclSet []Declaration

// shorthand maps a style class name to its declarations. One shorthand may
// expand to several properties (`center`, `card`).
var shorthand = map[string][]Declaration{
	// Text color.
	"red":   {{"color", "#ef4444"}},
	"blue":  {{"color", "#3b82f6"}},
	"green": {{"color", "#10b981"}},
	"white": {{"color", "#ffffff"}},
	"gray":  {{"color", "#1f2937"}},

	// Background color.
	"bgred":   {{"background-color", "#ef4444"}},
	"bgblue":  {{"background-color", "#3b82f6"}},
	"bggreen": {{"background-color", "#10b981"}},
	"bgwhite": {{"background-color", "#ffffff"}},
	"bggray":  {{"background-color", "#f3f4f6"}},

	// Typography.
	"small":  {{"font-size", "0.875rem"}},
	"base":   {{"font-size", "1rem"}},
	"large":  {{"font-size", "1.125rem"}},
	"xlarge": {{"font-size", "1.25rem"}},
	"bold":   {{"font-weight", "bold"}},
	"medium": {{"font-weight", "500"}},

	// Layout.
	"flex":    {{"display", "flex"}},
	"grid":    {{"display", "grid"}},
	"block":   {{"display", "block"}},
	"inline":  {{"display", "inline"}},
	"hidden":  {{"display", "none"}},
	"row":     {{"display", "flex"}, {"flex-direction", "row"}},
	"col":     {{"display", "flex"}, {"flex-direction", "column"}},
	"center":  {{"display", "flex"}, {"justify-content", "center"}, {"align-items", "center"}},
	"between": {{"justify-content", "space-between"}},

	// Sizing.
	"wfull": {{"width", "100%"}},
	"wauto": {{"width", "auto"}},
	"hfull": {{"height", "100%"}},
	"hauto": {{"height", "auto"}},

	// Decoration.
	"border":    {{"border", "1px solid #e5e7eb"}},
	"border2":   {{"border", "2px solid #e5e7eb"}},
	"rounded":   {{"border-radius", "0.25rem"}},
	"roundedlg": {{"border-radius", "0.5rem"}},
	"shadow":    {{"box-shadow", "0 1px 3px 0 rgba(0, 0, 0, 0.1)"}},
	"shadowlg":  {{"box-shadow", "0 10px 15px -3px rgba(0, 0, 0, 0.1)"}},
	"faded":     {{"opacity", "0.5"}},
}

func init() {
	// Spacing scale: p1..p8 and m1..m8, each step 0.25rem.
	steps := []string{"0.25rem", "0.5rem", "0.75rem", "1rem", "1.25rem", "1.5rem", "1.75rem", "2rem"}
	digits := "12345678"
	for i, v := range steps {
		shorthand["p"+string(digits[i])] = []Declaration{{"padding", v}}
		shorthand["m"+string(digits[i])] = []Declaration{{"margin", v}}
	}
}

// Known reports whether name is a recognized style shorthand.
func Known(name string) bool {
	_, ok := shorthand[name]
	return ok
}

// Resolve expands a shorthand chain into a canonical declaration set.
// Classes apply left to right, so a later class overrides an earlier one
// for the same property. Unknown names are returned separately; they do not
// contribute declarations and the caller decides how loudly to complain.
func Resolve(classes []string) (DeclSet, []string) {
	var unknown []string
	byProp := make(map[string]string)
	for _, c := range classes {
		decls, ok := shorthand[c]
		if !ok {
			unknown = append(unknown, c)
			continue
		}
		for _, d := range decls {
			byProp[d.Property] = d.Value
		}
	}
	if len(byProp) == 0 {
		return nil, unknown
	}
	set := make(DeclSet, 0, len(byProp))
	for prop, val := range byProp {
		set = append(set, Declaration{Property: prop, Value: val})
	}
	sort.Slice(set, func(i, j int) bool { return set[i].Property < set[j].Property })
	return set, unknown
}

// CSS renders the set as declaration text, one `prop: value;` per entry.
func (s DeclSet) CSS() string {
	var out []byte
	for i, d := range s {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, d.Property...)
		out = append(out, ": "...)
		out = append(out, d.Value...)
		out = append(out, ';')
	}
	return string(out)
}
