package expr

// symbolDef describes a control sequence that produces a single glyph.
type symbolDef struct {
	r      rune
	class  Class
	large  bool // grows in display style
	limits bool // scripts stack above and below in display style
}

func ord(r rune) symbolDef { return symbolDef{r: r, class: Ord} }
func bin(r rune) symbolDef { return symbolDef{r: r, class: Bin} }
func rel(r rune) symbolDef { return symbolDef{r: r, class: Rel} }
func openDelim(r rune) symbolDef { return symbolDef{r: r, class: Open} }
func closeDelim(r rune) symbolDef { return symbolDef{r: r, class: Close} }
func inner(r rune) symbolDef { return symbolDef{r: r, class: Inner} }

func largeOp(r rune, limits bool) symbolDef {
	return symbolDef{r: r, class: Op, large: true, limits: limits}
}

var symbols = map[string]symbolDef{
	// Greek lowercase
	"alpha": ord(0x03B1), "beta": ord(0x03B2), "gamma": ord(0x03B3), "delta": ord(0x03B4),
	"epsilon": ord(0x03F5), "varepsilon": ord(0x03B5), "zeta": ord(0x03B6), "eta": ord(0x03B7),
	"theta": ord(0x03B8), "vartheta": ord(0x03D1), "iota": ord(0x03B9), "kappa": ord(0x03BA),
	"varkappa": ord(0x03F0), "lambda": ord(0x03BB), "mu": ord(0x03BC), "nu": ord(0x03BD),
	"xi": ord(0x03BE), "omicron": ord(0x03BF), "pi": ord(0x03C0), "varpi": ord(0x03D6),
	"rho": ord(0x03C1), "varrho": ord(0x03F1), "sigma": ord(0x03C3), "varsigma": ord(0x03C2),
	"tau": ord(0x03C4), "upsilon": ord(0x03C5), "phi": ord(0x03D5), "varphi": ord(0x03C6),
	"chi": ord(0x03C7), "psi": ord(0x03C8), "omega": ord(0x03C9),

	// Greek uppercase
	"Gamma": ord(0x0393), "Delta": ord(0x0394), "Theta": ord(0x0398), "Lambda": ord(0x039B),
	"Xi": ord(0x039E), "Pi": ord(0x03A0), "Sigma": ord(0x03A3), "Upsilon": ord(0x03A5),
	"Phi": ord(0x03A6), "Psi": ord(0x03A8), "Omega": ord(0x03A9),

	// Hebrew
	"aleph": ord(0x2135), "beth": ord(0x2136), "gimel": ord(0x2137), "daleth": ord(0x2138),

	// Letterlike and miscellaneous ordinary symbols
	"infty": ord(0x221E), "partial": ord(0x2202), "nabla": ord(0x2207),
	"emptyset": ord(0x2205), "varnothing": ord(0x2300), "hbar": ord(0x210F), "hslash": ord(0x210F),
	"ell": ord(0x2113), "wp": ord(0x2118), "Re": ord(0x211C), "Im": ord(0x2111),
	"mho": ord(0x2127), "complement": ord(0x2201), "imath": ord(0x1D6A4), "jmath": ord(0x1D6A5),
	"forall": ord(0x2200), "exists": ord(0x2203), "nexists": ord(0x2204),
	"neg": ord(0x00AC), "lnot": ord(0x00AC), "angle": ord(0x2220), "measuredangle": ord(0x2221),
	"sphericalangle": ord(0x2222), "triangle": ord(0x25B3), "triangledown": ord(0x25BD),
	"blacktriangle": ord(0x25B2), "blacktriangledown": ord(0x25BC), "Box": ord(0x25A1),
	"square": ord(0x25A1), "blacksquare": ord(0x25A0), "lozenge": ord(0x25CA),
	"top": ord(0x22A4), "bot": ord(0x22A5), "prime": ord(0x2032), "backprime": ord(0x2035),
	"backslash": ord(0x005C), "clubsuit": ord(0x2663), "diamondsuit": ord(0x2662),
	"heartsuit": ord(0x2661), "spadesuit": ord(0x2660), "flat": ord(0x266D),
	"natural": ord(0x266E), "sharp": ord(0x266F), "checkmark": ord(0x2713), "surd": ord(0x221A),
	"S": ord(0x00A7), "P": ord(0x00B6), "degree": ord(0x00B0), "vdots": ord(0x22EE),
	"Vert": ord(0x2016), "vert": ord(0x007C), "|": ord(0x2016),
	"$": ord('$'), "%": ord('%'), "&": ord('&'), "#": ord('#'), "_": ord('_'),
	"{": openDelim('{'), "}": closeDelim('}'), "lbrace": openDelim('{'), "rbrace": closeDelim('}'),
	"langle": openDelim(0x27E8), "rangle": closeDelim(0x27E9), "lfloor": openDelim(0x230A), "rfloor": closeDelim(0x230B),
	"lceil": openDelim(0x2308), "rceil": closeDelim(0x2309), "lgroup": openDelim(0x27EE), "rgroup": closeDelim(0x27EF),
	"lbrack": openDelim('['), "rbrack": closeDelim(']'), "lvert": openDelim('|'), "rvert": closeDelim('|'),
	"lVert": openDelim(0x2016), "rVert": closeDelim(0x2016), "llbracket": openDelim(0x27E6), "rrbracket": closeDelim(0x27E7),

	// Dots
	"ldots": inner(0x2026), "dots": inner(0x2026), "dotsc": inner(0x2026), "dotso": inner(0x2026),
	"cdots": inner(0x22EF), "dotsb": inner(0x22EF), "dotsm": inner(0x22EF), "dotsi": inner(0x22EF),
	"ddots": inner(0x22F1), "iddots": inner(0x22F0), "cdot": bin(0x22C5),

	// Binary operators
	"pm": bin(0x00B1), "mp": bin(0x2213), "times": bin(0x00D7), "div": bin(0x00F7),
	"ast": bin(0x2217), "star": bin(0x22C6), "circ": bin(0x2218), "bullet": bin(0x2219),
	"diamond": bin(0x22C4), "setminus": bin(0x2216), "smallsetminus": bin(0x2216),
	"wedge": bin(0x2227), "land": bin(0x2227), "vee": bin(0x2228), "lor": bin(0x2228),
	"cap": bin(0x2229), "cup": bin(0x222A), "uplus": bin(0x228E), "sqcap": bin(0x2293),
	"sqcup": bin(0x2294), "oplus": bin(0x2295), "ominus": bin(0x2296), "otimes": bin(0x2297),
	"oslash": bin(0x2298), "odot": bin(0x2299), "circledcirc": bin(0x229A),
	"circledast": bin(0x229B), "circleddash": bin(0x229D), "boxplus": bin(0x229E),
	"boxminus": bin(0x229F), "boxtimes": bin(0x22A0), "boxdot": bin(0x22A1),
	"bigcirc": bin(0x25EF), "wr": bin(0x2240), "amalg": bin(0x2A3F), "dagger": bin(0x2020),
	"ddagger": bin(0x2021), "triangleleft": bin(0x25C1), "triangleright": bin(0x25B7),
	"lhd": bin(0x22B2), "rhd": bin(0x22B3), "unlhd": bin(0x22B4), "unrhd": bin(0x22B5),
	"intercal": bin(0x22BA), "veebar": bin(0x22BB), "barwedge": bin(0x22BC),
	"ltimes": bin(0x22C9), "rtimes": bin(0x22CA), "leftthreetimes": bin(0x22CB),
	"rightthreetimes": bin(0x22CC), "dotplus": bin(0x2214), "divideontimes": bin(0x22C7),
	"curlywedge": bin(0x22CF), "curlyvee": bin(0x22CE), "Cap": bin(0x22D2), "Cup": bin(0x22D3),

	// Relations
	"leq": rel(0x2264), "le": rel(0x2264), "geq": rel(0x2265), "ge": rel(0x2265),
	"leqq": rel(0x2266), "geqq": rel(0x2267), "leqslant": rel(0x2A7D), "geqslant": rel(0x2A7E),
	"lneqq": rel(0x2268), "gneqq": rel(0x2269), "lneq": rel(0x2A87), "gneq": rel(0x2A88),
	"neq": rel(0x2260), "ne": rel(0x2260), "equiv": rel(0x2261), "nequiv": rel(0x2262),
	"approx": rel(0x2248), "approxeq": rel(0x224A), "cong": rel(0x2245), "sim": rel(0x223C),
	"simeq": rel(0x2243), "backsim": rel(0x223D), "backsimeq": rel(0x22CD), "nsim": rel(0x2241),
	"ncong": rel(0x2247), "asymp": rel(0x224D), "doteq": rel(0x2250), "doteqdot": rel(0x2251),
	"Doteq": rel(0x2251), "fallingdotseq": rel(0x2252), "risingdotseq": rel(0x2253),
	"eqcirc": rel(0x2256), "circeq": rel(0x2257), "triangleq": rel(0x225C), "bumpeq": rel(0x224F),
	"Bumpeq": rel(0x224E), "propto": rel(0x221D), "varpropto": rel(0x221D),
	"coloneqq": rel(0x2254), "coloneq": rel(0x2254), "ll": rel(0x226A), "gg": rel(0x226B),
	"lll": rel(0x22D8), "ggg": rel(0x22D9), "lesssim": rel(0x2272), "gtrsim": rel(0x2273),
	"lessapprox": rel(0x2A85), "gtrapprox": rel(0x2A86), "lessgtr": rel(0x2276),
	"gtrless": rel(0x2277), "lesseqgtr": rel(0x22DA), "gtreqless": rel(0x22DB),
	"lessdot": rel(0x22D6), "gtrdot": rel(0x22D7), "nless": rel(0x226E), "ngtr": rel(0x226F),
	"nleq": rel(0x2270), "ngeq": rel(0x2271), "prec": rel(0x227A), "succ": rel(0x227B),
	"preceq": rel(0x2AAF), "succeq": rel(0x2AB0), "preccurlyeq": rel(0x227C),
	"succcurlyeq": rel(0x227D), "precsim": rel(0x227E), "succsim": rel(0x227F),
	"nprec": rel(0x2280), "nsucc": rel(0x2281), "in": rel(0x2208), "notin": rel(0x2209),
	"ni": rel(0x220B), "owns": rel(0x220B), "subset": rel(0x2282), "supset": rel(0x2283),
	"subseteq": rel(0x2286), "supseteq": rel(0x2287), "nsubseteq": rel(0x2288),
	"nsupseteq": rel(0x2289), "subsetneq": rel(0x228A), "supsetneq": rel(0x228B),
	"Subset": rel(0x22D0), "Supset": rel(0x22D1), "sqsubset": rel(0x228F), "sqsupset": rel(0x2290),
	"sqsubseteq": rel(0x2291), "sqsupseteq": rel(0x2292), "vdash": rel(0x22A2), "dashv": rel(0x22A3),
	"models": rel(0x22A8), "vDash": rel(0x22A8), "Vdash": rel(0x22A9), "Vvdash": rel(0x22AA),
	"perp": rel(0x27C2), "mid": rel(0x2223), "nmid": rel(0x2224), "parallel": rel(0x2225),
	"nparallel": rel(0x2226), "smile": rel(0x2323), "frown": rel(0x2322), "bowtie": rel(0x22C8),
	"Join": rel(0x22C8), "vartriangleleft": rel(0x22B2), "vartriangleright": rel(0x22B3),
	"trianglelefteq": rel(0x22B4), "trianglerighteq": rel(0x22B5), "ntriangleleft": rel(0x22EA),
	"ntriangleright": rel(0x22EB), "therefore": rel(0x2234), "because": rel(0x2235),
	"between": rel(0x226C), "multimap": rel(0x22B8),
	"colon": symbolDef{r: ':', class: Punct},

	// Arrows
	"leftarrow": rel(0x2190), "gets": rel(0x2190), "rightarrow": rel(0x2192), "to": rel(0x2192),
	"uparrow": rel(0x2191), "downarrow": rel(0x2193), "leftrightarrow": rel(0x2194),
	"updownarrow": rel(0x2195), "nearrow": rel(0x2197), "searrow": rel(0x2198),
	"swarrow": rel(0x2199), "nwarrow": rel(0x2196), "Leftarrow": rel(0x21D0),
	"Rightarrow": rel(0x21D2), "Uparrow": rel(0x21D1), "Downarrow": rel(0x21D3),
	"Leftrightarrow": rel(0x21D4), "Updownarrow": rel(0x21D5), "longleftarrow": rel(0x27F5),
	"longrightarrow": rel(0x27F6), "longleftrightarrow": rel(0x27F7), "Longleftarrow": rel(0x27F8),
	"Longrightarrow": rel(0x27F9), "Longleftrightarrow": rel(0x27FA), "implies": rel(0x27F9),
	"impliedby": rel(0x27F8), "iff": rel(0x27FA), "mapsto": rel(0x21A6), "longmapsto": rel(0x27FC),
	"hookleftarrow": rel(0x21A9), "hookrightarrow": rel(0x21AA), "leftharpoonup": rel(0x21BC),
	"leftharpoondown": rel(0x21BD), "rightharpoonup": rel(0x21C0), "rightharpoondown": rel(0x21C1),
	"rightleftharpoons": rel(0x21CC), "leftrightharpoons": rel(0x21CB),
	"rightleftarrows": rel(0x21C4), "leftrightarrows": rel(0x21C6), "leftleftarrows": rel(0x21C7),
	"rightrightarrows": rel(0x21C9), "Lleftarrow": rel(0x21DA), "Rrightarrow": rel(0x21DB),
	"Lsh": rel(0x21B0), "Rsh": rel(0x21B1), "curvearrowleft": rel(0x21B6),
	"curvearrowright": rel(0x21B7), "circlearrowleft": rel(0x21BA), "circlearrowright": rel(0x21BB),
	"leftrightsquigarrow": rel(0x21AD), "rightsquigarrow": rel(0x21DD), "leadsto": rel(0x21DD),
	"nleftarrow": rel(0x219A), "nrightarrow": rel(0x219B), "nleftrightarrow": rel(0x21AE),
	"nLeftarrow": rel(0x21CD), "nRightarrow": rel(0x21CF), "nLeftrightarrow": rel(0x21CE),
	"twoheadrightarrow": rel(0x21A0),

	// Large operators
	"sum": largeOp(0x2211, true), "prod": largeOp(0x220F, true), "coprod": largeOp(0x2210, true),
	"bigcap": largeOp(0x22C2, true), "bigcup": largeOp(0x22C3, true),
	"bigwedge": largeOp(0x22C0, true), "bigvee": largeOp(0x22C1, true),
	"bigodot": largeOp(0x2A00, true), "bigoplus": largeOp(0x2A01, true),
	"bigotimes": largeOp(0x2A02, true), "biguplus": largeOp(0x2A04, true),
	"bigsqcup": largeOp(0x2A06, true), "int": largeOp(0x222B, false),
	"iint": largeOp(0x222C, false), "iiint": largeOp(0x222D, false),
	"iiiint": largeOp(0x2A0C, false), "oint": largeOp(0x222E, false),
	"oiint": largeOp(0x222F, false), "oiiint": largeOp(0x2230, false),
}

// functions are upright operator names. The value reports whether the
// operator takes limits in display style.
var functions = map[string]bool{
	"arccos": false, "arcsin": false, "arctan": false, "arg": false, "cos": false,
	"cosh": false, "cot": false, "coth": false, "csc": false, "deg": false, "dim": false,
	"exp": false, "hom": false, "ker": false, "lg": false, "ln": false, "log": false,
	"sec": false, "sin": false, "sinh": false, "tan": false, "tanh": false,
	"det": true, "gcd": true, "inf": true, "lim": true, "liminf": true, "limsup": true,
	"max": true, "min": true, "Pr": true, "sup": true,
}

// functionNames overrides the printed name of some functions.
var functionNames = map[string]string{
	"liminf": "lim inf",
	"limsup": "lim sup",
}

var accents = map[string]AccentKind{
	"hat": AccentHat, "widehat": AccentWideHat, "check": AccentCheck, "widecheck": AccentWideCheck,
	"tilde": AccentTilde, "widetilde": AccentWideTilde, "acute": AccentAcute, "grave": AccentGrave,
	"dot": AccentDot, "ddot": AccentDDot, "dddot": AccentDDDot, "breve": AccentBreve,
	"bar": AccentBar, "vec": AccentVec, "mathring": AccentMathring,
	"overline": AccentOverline, "underline": AccentUnderline,
	"overbrace": AccentOverbrace, "underbrace": AccentUnderbrace,
	"overrightarrow": AccentOverRightArrow, "overleftarrow": AccentOverLeftArrow,
	"overleftrightarrow": AccentOverLeftRightArrow,
}

var fontCommands = map[string]alphabet{
	"mathrm": alphaRoman, "mathup": alphaRoman, "mathit": alphaDefault, "mathnormal": alphaDefault,
	"mathbf": alphaBold, "boldsymbol": alphaBoldItalic, "bm": alphaBoldItalic,
	"mathsf": alphaSans, "mathtt": alphaMono, "mathbb": alphaDoubleStruck,
	"mathcal": alphaScript, "mathscr": alphaScript, "mathfrak": alphaFraktur,
}

// Old-style switches such as {\bf x} apply to the rest of the group.
var fontSwitches = map[string]alphabet{
	"rm": alphaRoman, "it": alphaDefault, "bf": alphaBold, "sf": alphaSans,
	"tt": alphaMono, "cal": alphaScript,
}

// textCommands take a text-mode argument.
var textCommands = map[string]bool{
	"text": true, "textrm": true, "textit": true, "textbf": true, "textsf": true,
	"texttt": true, "textnormal": true, "textup": true, "mbox": true, "hbox": true,
}

// spaces in em.
var spaces = map[string]float64{
	",": 3.0 / 18, ":": 4.0 / 18, ">": 4.0 / 18, ";": 5.0 / 18, "!": -3.0 / 18,
	" ": 0.25, "thinspace": 3.0 / 18, "medspace": 4.0 / 18, "thickspace": 5.0 / 18,
	"negthinspace": -3.0 / 18, "negmedspace": -4.0 / 18, "negthickspace": -5.0 / 18,
	"enspace": 0.5, "quad": 1, "qquad": 2,
}

var mathStyles = map[string]MathStyle{
	"displaystyle": StyleDisplay, "textstyle": StyleText,
	"scriptstyle": StyleScript, "scriptscriptstyle": StyleScriptScript,
}

var classCommands = map[string]Class{
	"mathord": Ord, "mathop": Op, "mathbin": Bin, "mathrel": Rel,
	"mathopen": Open, "mathclose": Close, "mathpunct": Punct, "mathinner": Inner,
}

// delimiters accepted after \left, \right, \middle and \big.
var delimiters = map[string]rune{
	"(": '(', ")": ')', "[": '[', "]": ']', "|": '|', "/": '/', "<": 0x27E8, ">": 0x27E9,
	`\{`: '{', `\}`: '}', `\lbrace`: '{', `\rbrace`: '}', `\lbrack`: '[', `\rbrack`: ']',
	`\langle`: 0x27E8, `\rangle`: 0x27E9, `\lfloor`: 0x230A, `\rfloor`: 0x230B,
	`\lceil`: 0x2308, `\rceil`: 0x2309, `\vert`: '|', `\Vert`: 0x2016, `\|`: 0x2016,
	`\lvert`: '|', `\rvert`: '|', `\lVert`: 0x2016, `\rVert`: 0x2016, `\mid`: '|',
	`\uparrow`: 0x2191, `\downarrow`: 0x2193, `\updownarrow`: 0x2195,
	`\Uparrow`: 0x21D1, `\Downarrow`: 0x21D3, `\Updownarrow`: 0x21D5,
	`\backslash`: '\\', `\lgroup`: 0x27EE, `\rgroup`: 0x27EF,
	`\llbracket`: 0x27E6, `\rrbracket`: 0x27E7,
}

// bigSizes maps \big-family commands to a size step and class.
var bigSizes = map[string]struct {
	size  int
	class Class
}{
	"big": {1, Ord}, "Big": {2, Ord}, "bigg": {3, Ord}, "Bigg": {4, Ord},
	"bigl": {1, Open}, "Bigl": {2, Open}, "biggl": {3, Open}, "Biggl": {4, Open},
	"bigr": {1, Close}, "Bigr": {2, Close}, "biggr": {3, Close}, "Biggr": {4, Close},
	"bigm": {1, Rel}, "Bigm": {2, Rel}, "biggm": {3, Rel}, "Biggm": {4, Rel},
}

// negations maps a relation to its precomposed negated form for \not.
var negations = map[rune]rune{
	'=': 0x2260, '<': 0x226E, '>': 0x226F, 0x2264: 0x2270, 0x2265: 0x2271,
	0x2208: 0x2209, 0x220B: 0x220C, 0x2282: 0x2284, 0x2283: 0x2285,
	0x2286: 0x2288, 0x2287: 0x2289, 0x2261: 0x2262, 0x223C: 0x2241,
	0x2245: 0x2247, 0x2248: 0x2249, 0x2223: 0x2224, 0x2225: 0x2226,
	0x227A: 0x2280, 0x227B: 0x2281, 0x2203: 0x2204, 0x2243: 0x2244,
	0x2272: 0x2274, 0x2273: 0x2275, 0x2276: 0x2278, 0x2277: 0x2279,
}

// charClasses gives the class of ASCII characters that are not letters or
// digits.
var charClasses = map[rune]Class{
	'+': Bin, '-': Bin, '*': Bin,
	'=': Rel, '<': Rel, '>': Rel, ':': Rel,
	',': Punct, ';': Punct,
	'(': Open, '[': Open,
	')': Close, ']': Close, '!': Close, '?': Close,
	'.': Ord, '/': Ord, '|': Ord, '@': Ord, '"': Ord, '`': Ord,
}

// charRunes substitutes math glyphs for ASCII input.
var charRunes = map[rune]rune{
	'-':  0x2212,
	'*':  0x2217,
	'\'': 0x2032,
}

// unicodeClasses classifies non-ASCII input characters by looking them up
// in the command table.
var unicodeClasses = func() map[rune]symbolDef {
	m := make(map[rune]symbolDef, len(symbols))
	for _, def := range symbols {
		if def.r < 0x80 {
			continue
		}
		if prev, ok := m[def.r]; ok && prev.class <= def.class {
			continue
		}
		m[def.r] = def
	}
	return m
}()
