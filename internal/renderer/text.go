package renderer

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// TextHeight is the em size of scale-1 text in scene units
const TextHeight = 0.42

type faceKey struct {
	italic bool
	size   int
}

// Parsed fonts are shared; faces are not safe for concurrent use, so every
// renderer keeps its own faceCache.
var (
	fontsOnce   sync.Once
	fontsErr    error
	regularFont *opentype.Font
	italicFont  *opentype.Font
)

type faceCache map[faceKey]font.Face

func loadFonts() error {
	fontsOnce.Do(func() {
		if regularFont, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		italicFont, fontsErr = opentype.Parse(goitalic.TTF)
	})
	return fontsErr
}

// face returns a cached face. Sizes are rounded to whole pixels.
func (fc faceCache) face(italic bool, size float64) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	key := faceKey{italic: italic, size: int(math.Round(size))}
	if key.size < 1 {
		key.size = 1
	}

	if f, ok := fc[key]; ok {
		return f, nil
	}

	src := regularFont
	if italic {
		src = italicFont
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    float64(key.size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	fc[key] = f
	return f, nil
}

var texSymbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"theta": "θ", "lambda": "λ", "mu": "μ", "pi": "π", "rho": "ρ",
	"sigma": "σ", "tau": "τ", "phi": "φ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Pi": "Π",
	"Sigma": "Σ", "Phi": "Φ", "Omega": "Ω",
	"infty": "∞", "approx": "≈", "propto": "~", "sum": "Σ",
	"cdot": "·", "times": "×", "pm": "±", "to": "→", "rightarrow": "→",
	"le": "≤", "leq": "≤", "ge": "≥", "geq": "≥", "neq": "≠", "in": "∈",
	"ldots": "...", "cdots": "...", "max": "max", "min": "min", "log": "log",
	"quad": "  ", "qquad": "    ",
	"left": "", "right": "", "displaystyle": "",
}

var texShortSymbols = map[rune]string{
	';': " ", ',': " ", ':': " ", ' ': " ", '!': "",
	'|': "‖", '{': "{", '}': "}", '\\': " ",
}

var superscripts = map[rune]rune{'1': '¹', '2': '²', '3': '³'}

// TexToUnicode flattens a small subset of TeX math into readable Unicode:
// fractions become a/b, roots √(…), Greek commands their letters and the
// squares and cubes superscript digits. Spaces outside \text are dropped.
func TexToUnicode(s string) string {
	p := &texParser{src: []rune(s)}
	return p.parse(false)
}

type texParser struct {
	src []rune
	pos int
}

func (p *texParser) parse(inGroup bool) string {
	var b strings.Builder
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		switch {
		case r == '}':
			p.pos++
			if inGroup {
				return b.String()
			}
		case r == '{':
			p.pos++
			b.WriteString(p.parse(true))
		case r == '\\':
			b.WriteString(p.command())
		case r == '^':
			p.pos++
			b.WriteString(superscript(p.argument()))
		case r == '_':
			p.pos++
			b.WriteString(p.argument())
		case unicode.IsSpace(r):
			p.pos++
		default:
			p.pos++
			b.WriteRune(r)
		}
	}
	return b.String()
}

// argument reads a braced group or a single token
func (p *texParser) argument() string {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return ""
	}
	switch r := p.src[p.pos]; r {
	case '{':
		p.pos++
		return p.parse(true)
	case '\\':
		return p.command()
	default:
		p.pos++
		return string(r)
	}
}

// raw reads a braced group verbatim
func (p *texParser) raw() string {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
	if p.pos >= len(p.src) || p.src[p.pos] != '{' {
		return p.argument()
	}
	p.pos++
	start, depth := p.pos, 1
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := string(p.src[start:p.pos])
				p.pos++
				return s
			}
		}
		p.pos++
	}
	return string(p.src[start:])
}

func (p *texParser) command() string {
	p.pos++ // backslash
	if p.pos >= len(p.src) {
		return ""
	}
	if r := p.src[p.pos]; !unicode.IsLetter(r) {
		p.pos++
		if s, ok := texShortSymbols[r]; ok {
			return s
		}
		return string(r)
	}

	start := p.pos
	for p.pos < len(p.src) && unicode.IsLetter(p.src[p.pos]) {
		p.pos++
	}
	name := string(p.src[start:p.pos])

	switch name {
	case "frac", "tfrac", "dfrac":
		num, den := p.argument(), p.argument()
		return wrap(num) + "/" + wrap(den)
	case "sqrt":
		return "√" + wrap(p.argument())
	case "text", "textrm", "mathrm", "operatorname", "mathbf", "mathit":
		return p.raw()
	}
	if s, ok := texSymbols[name]; ok {
		return s
	}
	return name
}

// wrap parenthesises compound expressions
func wrap(s string) string {
	if strings.ContainsAny(s, "+-/=·× ") && !enclosed(s) {
		return "(" + s + ")"
	}
	return s
}

// enclosed reports whether the first parenthesis of s closes at its end
func enclosed(s string) bool {
	if !strings.HasPrefix(s, "(") {
		return false
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

func superscript(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range s {
		sup, ok := superscripts[r]
		if !ok {
			return "^" + wrap(s)
		}
		b.WriteRune(sup)
	}
	return b.String()
}
