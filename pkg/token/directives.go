package token

// DirectiveClass says what kind of construct a directive introduces.
// The set is closed: every valid `!name` is resolved through these tables
// once, at parse time. There is no runtime dispatch on directive names.
type DirectiveClass uint8

const (
	DirUnknown DirectiveClass = iota
	DirElement
	DirLet
	DirIf
	DirElse
	DirFor
	DirWhile
	DirEvent
)

// elementTags maps element directives to the tag the descriptor carries.
// Semantic aliases (greeting, caption, ...) lower to plain tags so backends
// never see them.
var elementTags = map[string]string{
	"div":      "div",
	"span":     "span",
	"p":        "p",
	"h1":       "h1",
	"h2":       "h2",
	"h3":       "h3",
	"h4":       "h4",
	"h5":       "h5",
	"h6":       "h6",
	"button":   "button",
	"input":    "input",
	"img":      "img",
	"a":        "a",
	"ul":       "ul",
	"ol":       "ol",
	"li":       "li",
	"form":     "form",
	"label":    "label",
	"header":   "header",
	"footer":   "footer",
	"section":  "section",
	"nav":      "nav",
	"article":  "article",
	"main":     "main",

	// Semantic aliases
	"greeting": "p",
	"caption":  "span",
	"title":    "h1",
	"subtitle": "h2",
	"text":     "p",
	"link":     "a",
	"row":      "div",
	"col":      "div",
	"card":     "div",
}

// events is the closed set of event directives, marker name -> event name.
var events = map[string]string{
	"onclick":  "click",
	"oninput":  "input",
	"onchange": "change",
	"onsubmit": "submit",
	"onkeydown": "keydown",
	"onkeyup":  "keyup",
	"onfocus":  "focus",
	"onblur":   "blur",
	"onhover":  "hover",
}

// Classify resolves a directive name against the static tables.
func Classify(name string) DirectiveClass {
	switch name {
	case "let":
		return DirLet
	case "if":
		return DirIf
	case "else":
		return DirElse
	case "for":
		return DirFor
	case "while":
		return DirWhile
	}
	if _, ok := events[name]; ok {
		return DirEvent
	}
	if _, ok := elementTags[name]; ok {
		return DirElement
	}
	return DirUnknown
}

// ElementTag returns the backend tag for an element directive.
func ElementTag(name string) (string, bool) {
	tag, ok := elementTags[name]
	return tag, ok
}

// EventName returns the event an `!on*` directive binds.
func EventName(name string) (string, bool) {
	ev, ok := events[name]
	return ev, ok
}
