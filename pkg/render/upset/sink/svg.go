package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/upset/pkg/render/upset"
	"github.com/matzehuels/upset/pkg/render/upset/styles"
)

const rowInteractionJS = `
    (function () {
      var root = document.getElementById('upset-root');
      var endpoint = root.getAttribute('data-endpoint');
      var tip = document.getElementById('upset-tooltip');
      var tipBox = tip.querySelector('rect');
      var tipText = tip.querySelector('text');
      function mark(key, cls, on) {
        root.querySelectorAll('[data-key]').forEach(function (el) {
          if (el.getAttribute('data-key') === key) el.classList.toggle(cls, on);
        });
      }
      function place(ev) {
        var pt = root.createSVGPoint();
        pt.x = ev.clientX; pt.y = ev.clientY;
        var p = pt.matrixTransform(root.getScreenCTM().inverse());
        tip.setAttribute('transform', 'translate(' + (p.x + %g) + ',' + (p.y + %g) + ')');
      }
      function post(action, key) {
        if (!endpoint) return;
        fetch(endpoint + '/' + action, {
          method: 'POST',
          headers: {'Content-Type': 'application/json'},
          body: JSON.stringify({key: key})
        });
      }
      root.querySelectorAll('.hit').forEach(function (hit) {
        var key = hit.getAttribute('data-key');
        hit.addEventListener('mouseenter', function (ev) {
          mark(key, 'hover', true);
          tipText.textContent = hit.getAttribute('data-tip');
          tipBox.setAttribute('width', tipText.getComputedTextLength() + 12);
          tip.setAttribute('visibility', 'visible');
          place(ev);
        });
        hit.addEventListener('mousemove', place);
        hit.addEventListener('mouseleave', function () {
          mark(key, 'hover', false);
          tip.setAttribute('visibility', 'hidden');
        });
        hit.addEventListener('click', function () {
          mark(key, 'selected', !hit.classList.contains('selected'));
          post('click', key);
        });
      });
    })();`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	endpoint string
	static   bool
	tooltip  *tooltip
}

type tooltip struct {
	text string
	x, y float64
}

// WithEndpoint makes clicks POST {"key": ...} to endpoint + "/click".
func WithEndpoint(endpoint string) SVGOption {
	return func(r *svgRenderer) { r.endpoint = strings.TrimSuffix(endpoint, "/") }
}

// WithStatic omits the interaction script.
func WithStatic() SVGOption { return func(r *svgRenderer) { r.static = true } }

// WithTooltip draws a visible tooltip with its top left corner at x, y.
func WithTooltip(text string, x, y float64) SVGOption {
	return func(r *svgRenderer) { r.tooltip = &tooltip{text: text, x: x, y: y} }
}

// WithChartTooltip draws t when it is visible.
func WithChartTooltip(t *upset.Tooltip) SVGOption {
	return func(r *svgRenderer) {
		if t == nil || !t.Visible() {
			return
		}
		x, y := t.Position()
		r.tooltip = &tooltip{text: t.Text(), x: x, y: y}
	}
}

// RenderSVG writes s as a standalone SVG document. An empty scene yields an
// empty frame.
func RenderSVG(s upset.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	p := s.Colors()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" id="upset-root" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f"`,
		s.Width, s.Height, s.Width, s.Height)
	if r.endpoint != "" {
		fmt.Fprintf(&buf, ` data-endpoint="%s"`, styles.EscapeXML(r.endpoint))
	}
	buf.WriteString(">\n")
	fmt.Fprintf(&buf, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", attr(s.Background, "#ffffff"))

	if s.Empty() {
		buf.WriteString("</svg>\n")
		return buf.Bytes()
	}

	renderStyle(&buf, p)
	for _, e := range s.Elements {
		renderElement(&buf, s, e)
	}
	renderTooltip(&buf, p, r.tooltip)
	if !r.static {
		buf.WriteString("  <script type=\"text/javascript\"><![CDATA[")
		fmt.Fprintf(&buf, rowInteractionJS, upset.TooltipOffsetX, upset.TooltipOffsetY)
		buf.WriteString("\n  ]]></script>\n")
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderStyle(buf *bytes.Buffer, p styles.Palette) {
	buf.WriteString("  <style>\n")
	buf.WriteString("    .hit { cursor: pointer; }\n")
	buf.WriteString("    .cell, .dot, .bar { transition: fill 0.15s ease; }\n")
	buf.WriteString("    text { font-family: 'Go', 'Helvetica Neue', Arial, sans-serif; }\n")
	for _, c := range []struct {
		class string
		w     styles.Swatch
	}{{"cell", p.Cell}, {"dot", p.Dot}, {"bar", p.Bar}} {
		fmt.Fprintf(buf, "    .%s.inc { fill: %s; }\n", c.class, c.w.Included)
		fmt.Fprintf(buf, "    .%s.exc { fill: %s; }\n", c.class, c.w.Excluded)
		fmt.Fprintf(buf, "    .%s.inc.hover { fill: %s; }\n", c.class, c.w.HoveredIncluded)
		fmt.Fprintf(buf, "    .%s.exc.selected { fill: %s; }\n", c.class, c.w.SelectedExcluded)
		fmt.Fprintf(buf, "    .%s.inc.selected { fill: %s; }\n", c.class, c.w.SelectedIncluded)
	}
	buf.WriteString("  </style>\n")
}

func renderElement(buf *bytes.Buffer, s upset.Scene, e upset.Element) {
	switch e.Shape {
	case upset.ShapeRect:
		fmt.Fprintf(buf, `  <rect id="%s"%s x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"%s%s`,
			e.ID, classAttr(s, e), e.X, e.Y, e.W, e.H, attr(e.Fill, "none"), strokeAttr(e), dataAttr(e))
		if e.Role == upset.RoleHit {
			fmt.Fprintf(buf, ` data-tip="%s"><title>%s</title></rect>`+"\n", styles.EscapeXML(e.Title), styles.EscapeXML(e.Title))
			return
		}
		buf.WriteString("/>\n")
	case upset.ShapeCircle:
		fmt.Fprintf(buf, `  <circle id="%s"%s cx="%.2f" cy="%.2f" r="%.2f" fill="%s"%s%s/>`+"\n",
			e.ID, classAttr(s, e), e.X, e.Y, e.R, attr(e.Fill, "none"), strokeAttr(e), dataAttr(e))
	case upset.ShapeLine:
		fmt.Fprintf(buf, `  <line id="%s"%s x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"%s/>`+"\n",
			e.ID, classAttr(s, e), e.X, e.Y, e.X2, e.Y2, strokeAttr(e))
	case upset.ShapeText:
		fmt.Fprintf(buf, `  <text id="%s"%s x="%.2f" y="%.2f" font-size="%.2f" fill="%s"`,
			e.ID, classAttr(s, e), e.X, e.Y, e.FontSize, attr(e.Fill, "#000000"))
		if e.Anchor != "" {
			fmt.Fprintf(buf, ` text-anchor="%s"`, e.Anchor)
		}
		if e.Baseline == upset.BaselineMiddle {
			buf.WriteString(` dominant-baseline="central"`)
		}
		if e.Rotate != 0 {
			fmt.Fprintf(buf, ` transform="rotate(%.1f %.2f %.2f)"`, e.Rotate, e.X, e.Y)
		}
		buf.WriteString(dataAttr(e))
		buf.WriteString(">")
		buf.WriteString(styles.EscapeXML(e.Text))
		if e.Title != "" && e.Title != e.Text {
			fmt.Fprintf(buf, "<title>%s</title>", styles.EscapeXML(e.Title))
		}
		buf.WriteString("</text>\n")
	}
}

func renderTooltip(buf *bytes.Buffer, p styles.Palette, t *tooltip) {
	visibility, text, x, y := "hidden", "", 0.0, 0.0
	if t != nil {
		visibility, text, x, y = "visible", t.text, t.x, t.y
	}
	width := float64(len([]rune(text)))*7 + 12
	fmt.Fprintf(buf, `  <g id="upset-tooltip" visibility="%s" transform="translate(%.2f,%.2f)" pointer-events="none">`+"\n", visibility, x, y)
	fmt.Fprintf(buf, `    <rect width="%.2f" height="22" rx="3" fill="%s" opacity="0.9"/>`+"\n", width, p.Tooltip)
	fmt.Fprintf(buf, `    <text x="6" y="15" font-size="12" fill="%s">%s</text>`+"\n", p.InsideLabel, styles.EscapeXML(text))
	buf.WriteString("  </g>\n")
}

// classAttr tags paintable elements with their role, membership and
// selection so the stylesheet can recolor them in the browser.
func classAttr(s upset.Scene, e upset.Element) string {
	classes := []string{string(e.Role)}
	switch e.Role {
	case upset.RoleCell, upset.RoleDot, upset.RoleBar:
		if e.Included {
			classes = append(classes, "inc")
		} else {
			classes = append(classes, "exc")
		}
	}
	if e.Key != "" && s.IsSelected(e.Key) {
		classes = append(classes, "selected")
	}
	if e.Key != "" && e.Key == s.Hovered {
		classes = append(classes, "hover")
	}
	return fmt.Sprintf(` class="%s"`, strings.Join(classes, " "))
}

func dataAttr(e upset.Element) string {
	var b strings.Builder
	if e.Key != "" {
		fmt.Fprintf(&b, ` data-key="%s"`, styles.EscapeXML(e.Key))
	}
	if e.Set != "" {
		fmt.Fprintf(&b, ` data-set="%s"`, styles.EscapeXML(e.Set))
	}
	return b.String()
}

func strokeAttr(e upset.Element) string {
	if e.Stroke == "" {
		return ""
	}
	return fmt.Sprintf(` stroke="%s" stroke-width="%.1f"`, e.Stroke, e.StrokeWidth)
}

func attr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return styles.EscapeXML(v)
}
