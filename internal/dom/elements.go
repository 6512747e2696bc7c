package dom

// Element namespaces. Kestrel keys namespaces by short name rather than the
// full W3C URI; nothing in the pipeline round-trips the URI form.
const (
	NamespaceHTML   = "html"
	NamespaceMathML = "mathml"
	NamespaceSVG    = "svg"
)

// formattingHTMLElements are the HTML formatting elements, the set the HTML5
// tree-construction algorithm tracks on its list of active formatting
// elements.
var formattingHTMLElements = map[string]bool{
	"a": true, "b": true, "big": true, "code": true, "em": true, "font": true,
	"i": true, "nobr": true, "s": true, "small": true, "strike": true,
	"strong": true, "tt": true, "u": true,
}

// specialHTMLElements are the HTML elements in the "special" category.
var specialHTMLElements = map[string]bool{
	"address": true, "applet": true, "area": true, "article": true,
	"aside": true, "base": true, "basefont": true, "bgsound": true,
	"blockquote": true, "body": true, "br": true, "button": true,
	"caption": true, "center": true, "col": true, "colgroup": true,
	"dd": true, "details": true, "dir": true, "div": true, "dl": true,
	"dt": true, "embed": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "frame": true,
	"frameset": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "head": true, "header": true, "hgroup": true,
	"hr": true, "html": true, "iframe": true, "img": true, "input": true,
	"keygen": true, "li": true, "link": true, "listing": true, "main": true,
	"marquee": true, "menu": true, "meta": true, "nav": true, "noembed": true,
	"noframes": true, "noscript": true, "object": true, "ol": true, "p": true,
	"param": true, "plaintext": true, "pre": true, "script": true,
	"search": true, "section": true, "select": true, "source": true,
	"style": true, "summary": true, "table": true, "tbody": true, "td": true,
	"template": true, "textarea": true, "tfoot": true, "th": true,
	"thead": true, "title": true, "tr": true, "track": true, "ul": true,
	"wbr": true, "xmp": true,
}

var specialMathMLElements = map[string]bool{
	"mi": true, "mo": true, "mn": true, "ms": true, "mtext": true,
	"annotation-xml": true,
}

var specialSVGElements = map[string]bool{
	"foreignObject": true, "desc": true, "title": true,
}

// IsFormatting reports whether n is an HTML formatting element.
func (n *Node) IsFormatting() bool {
	return n.Element != nil && n.Element.Namespace == NamespaceHTML &&
		formattingHTMLElements[n.Element.Name]
}

// IsSpecial reports whether n is in the "special" element category of its
// namespace (HTML, MathML, or SVG).
func (n *Node) IsSpecial() bool {
	if n.Element == nil {
		return false
	}
	switch n.Element.Namespace {
	case NamespaceHTML:
		return specialHTMLElements[n.Element.Name]
	case NamespaceMathML:
		return specialMathMLElements[n.Element.Name]
	case NamespaceSVG:
		return specialSVGElements[n.Element.Name]
	}
	return false
}

// IsHTMLIntegrationPoint reports whether n is an HTML integration point: a
// MathML annotation-xml element whose encoding attribute is text/html or
// application/xhtml+xml, or an SVG foreignObject/desc/title element.
func (n *Node) IsHTMLIntegrationPoint() bool {
	if n.Element == nil {
		return false
	}
	if n.Element.Namespace == NamespaceMathML && n.Element.Name == "annotation-xml" {
		enc, ok := n.Element.Attributes.Get("encoding")
		if !ok {
			return false
		}
		return equalsASCIIFold(enc, "text/html") || equalsASCIIFold(enc, "application/xhtml+xml")
	}
	return n.Element.Namespace == NamespaceSVG && specialSVGElements[n.Element.Name]
}

// IsMathMLIntegrationPoint reports whether n is a MathML text integration
// point (mi, mo, mn, ms, mtext).
func (n *Node) IsMathMLIntegrationPoint() bool {
	if n.Element == nil || n.Element.Namespace != NamespaceMathML {
		return false
	}
	switch n.Element.Name {
	case "mi", "mo", "mn", "ms", "mtext":
		return true
	}
	return false
}

// equalsASCIIFold compares two strings case-insensitively over ASCII only,
// which is all attribute-value keyword matching needs.
func equalsASCIIFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
