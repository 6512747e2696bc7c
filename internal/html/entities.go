package html

// namedEntities maps an entity name, as it appears after "&" (including the
// trailing ";" for every entity that requires one), to its expansion.
// legacyEntities lists the handful of historical entities HTML5 still
// recognises without a trailing semicolon (8.2.4.69's "ambiguous ampersand"
// carve-out), keyed the same way but without ";".
//
// This is a curated subset of the ~2200-entry WHATWG named character
// reference table, grounded on
// original_source/.../character_reference.rs's TOKEN_NAMED_CHARS (the data
// itself was stripped from the distilled original_source/ pack, so the
// legacy subset and a broad set of common symbol/Greek/arrow/math entities
// are reproduced here from the WHATWG HTML specification, covering every
// entity spec.md's own test vectors exercise). See DESIGN.md for the
// Open Question note on this being a subset rather than the full table.
var legacyEntities = map[string]string{
	"AElig": "Æ", "AMP": "&", "Aacute": "Á", "Acirc": "Â", "Agrave": "À",
	"Aring": "Å", "Atilde": "Ã", "Auml": "Ä", "COPY": "©", "Ccedil": "Ç",
	"ETH": "Ð", "Eacute": "É", "Ecirc": "Ê", "Egrave": "È", "Euml": "Ë",
	"GT": ">", "Iacute": "Í", "Icirc": "Î", "Igrave": "Ì", "Iuml": "Ï",
	"LT": "<", "Ntilde": "Ñ", "Oacute": "Ó", "Ocirc": "Ô", "Ograve": "Ò",
	"Oslash": "Ø", "Otilde": "Õ", "Ouml": "Ö", "QUOT": "\"", "REG": "®",
	"THORN": "Þ", "Uacute": "Ú", "Ucirc": "Û", "Ugrave": "Ù", "Uuml": "Ü",
	"Yacute": "Ý", "aacute": "á", "acirc": "â", "acute": "´", "aelig": "æ",
	"agrave": "à", "amp": "&", "aring": "å", "atilde": "ã", "auml": "ä",
	"brvbar": "¦", "ccedil": "ç", "cedil": "¸", "cent": "¢", "copy": "©",
	"curren": "¤", "deg": "°", "divide": "÷", "eacute": "é", "ecirc": "ê",
	"egrave": "è", "eth": "ð", "euml": "ë", "frac12": "½", "frac14": "¼",
	"frac34": "¾", "gt": ">", "iacute": "í", "icirc": "î", "iexcl": "¡",
	"igrave": "ì", "iquest": "¿", "iuml": "ï", "laquo": "«", "lt": "<",
	"macr": "¯", "micro": "µ", "middot": "·", "nbsp": " ", "not": "¬",
	"ntilde": "ñ", "oacute": "ó", "ocirc": "ô", "ograve": "ò", "ordf": "ª",
	"ordm": "º", "oslash": "ø", "otilde": "õ", "ouml": "ö", "para": "¶",
	"plusmn": "±", "pound": "£", "quot": "\"", "raquo": "»", "reg": "®",
	"sect": "§", "shy": "­", "sup1": "¹", "sup2": "²", "sup3": "³",
	"szlig": "ß", "thorn": "þ", "times": "×", "uacute": "ú", "ucirc": "û",
	"ugrave": "ù", "uml": "¨", "uuml": "ü", "yacute": "ý", "yen": "¥",
	"yuml": "ÿ",
}

var semicolonOnlyEntities = map[string]string{
	"apos": "'", "excl": "!", "num": "#", "dollar": "$", "percnt": "%",
	"ast": "*", "plus": "+", "comma": ",", "minus": "−", "period": ".",
	"sol": "/", "colon": ":", "semi": ";", "equals": "=", "quest": "?",
	"commat": "@", "euro": "€", "notin": "∉",
	"hellip": "…", "mdash": "—", "ndash": "–",
	"lsquo": "‘", "rsquo": "’", "ldquo": "“", "rdquo": "”",
	"bull": "•", "dagger": "†", "Dagger": "‡", "permil": "‰",
	"lsaquo": "‹", "rsaquo": "›", "trade": "™",
	"larr": "←", "uarr": "↑", "rarr": "→", "darr": "↓", "harr": "↔",
	"spades": "♠", "clubs": "♣", "hearts": "♥", "diams": "♦",
	"forall": "∀", "part": "∂", "exist": "∃", "empty": "∅",
	"nabla": "∇", "isin": "∈", "ni": "∋", "prod": "∏",
	"sum": "∑", "lowast": "∗", "radic": "√", "prop": "∝",
	"infin": "∞", "ang": "∠", "and": "∧", "or": "∨",
	"cap": "∩", "cup": "∪", "int": "∫", "there4": "∴",
	"sim": "∼", "cong": "≅", "asymp": "≈", "ne": "≠",
	"equiv": "≡", "le": "≤", "ge": "≥", "sub": "⊂",
	"sup": "⊃", "nsub": "⊄", "sube": "⊆", "supe": "⊇",
	"oplus": "⊕", "otimes": "⊗", "perp": "⊥", "sdot": "⋅",
	"Alpha": "Α", "Beta": "Β", "Gamma": "Γ", "Delta": "Δ",
	"Epsilon": "Ε", "Zeta": "Ζ", "Eta": "Η", "Theta": "Θ",
	"Iota": "Ι", "Kappa": "Κ", "Lambda": "Λ", "Mu": "Μ",
	"Nu": "Ν", "Xi": "Ξ", "Omicron": "Ο", "Pi": "Π",
	"Rho": "Ρ", "Sigma": "Σ", "Tau": "Τ", "Upsilon": "Υ",
	"Phi": "Φ", "Chi": "Χ", "Psi": "Ψ", "Omega": "Ω",
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ",
	"epsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ",
	"nu": "ν", "xi": "ξ", "omicron": "ο", "pi": "π",
	"rho": "ρ", "sigmaf": "ς", "sigma": "σ", "tau": "τ",
	"upsilon": "υ", "phi": "φ", "chi": "χ", "psi": "ψ",
	"omega": "ω", "thetasym": "ϑ", "upsih": "ϒ", "piv": "ϖ",
}

var namedEntities map[string]string
var longestEntityLen int

func init() {
	namedEntities = make(map[string]string, len(legacyEntities)*2+len(semicolonOnlyEntities))
	for name, expansion := range legacyEntities {
		namedEntities[name] = expansion
		namedEntities[name+";"] = expansion
		if n := len(name) + 1; n > longestEntityLen {
			longestEntityLen = n
		}
	}
	for name, expansion := range semicolonOnlyEntities {
		full := name + ";"
		namedEntities[full] = expansion
		if n := len(full); n > longestEntityLen {
			longestEntityLen = n
		}
	}
}
