package chart

import (
	"fmt"
	"html"
	"math"
	"os"
	"strings"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

var palette = []string{"#2e7d32", "#9e9e9e", "#c62828", "#1565c0", "#ef6c00", "#6a1b9a", "#00838f", "#ad1457", "#558b2f", "#4e342e", "#37474f", "#f9a825"}

// seriesColours pins the usual label colours.
var seriesColours = map[string]string{
	string(domain.SentimentPositive): "#2e7d32",
	string(domain.SentimentNeutral):  "#9e9e9e",
	string(domain.SentimentNegative): "#c62828",
	string(domain.CategoryPromoter):  "#2e7d32",
	string(domain.CategoryPassive):   "#f9a825",
	string(domain.CategoryDetractor): "#c62828",
}

func colour(label string, i int) string {
	if c, ok := seriesColours[label]; ok {
		return c
	}
	return palette[i%len(palette)]
}

type svgEncoder struct{}

func (svgEncoder) ext() string      { return "svg" }
func (svgEncoder) mimeType() string { return "image/svg+xml" }

func (svgEncoder) encode(path string, fig figure, width, height int) error {
	return os.WriteFile(path, []byte(drawSVG(fig, width, height)), 0o644)
}

// drawSVG returns a standalone SVG document for fig.
func drawSVG(fig figure, width, height int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`+"\n", width, height)
	drawFigure(&b, fig, 0, 0, float64(width), float64(height))
	b.WriteString("</svg>\n")
	return b.String()
}

func drawFigure(b *strings.Builder, fig figure, x, y, w, h float64) {
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="%.0f" text-anchor="middle" font-weight="bold">%s</text>`+"\n",
		x+w/2, y+h*0.07, math.Max(10, h*0.045), html.EscapeString(fig.Title))

	top := y + h*0.12
	plotH := h * 0.70
	switch {
	case len(fig.Panels) > 0:
		cols := 2
		rows := (len(fig.Panels) + cols - 1) / cols
		pw, ph := w/float64(cols), (h-h*0.1)/float64(rows)
		for i, p := range fig.Panels {
			drawFigure(b, p, x+float64(i%cols)*pw, y+h*0.1+float64(i/cols)*ph, pw, ph)
		}
	case fig.Style == domain.StylePie:
		drawPie(b, fig, x, top, w, h-h*0.12)
	case fig.Style == domain.StyleLine:
		drawLines(b, fig, x+w*0.08, top, w*0.84, plotH)
	default:
		drawBars(b, fig, x+w*0.08, top, w*0.84, plotH)
	}
}

func maxValue(fig figure) float64 {
	m := 0.0
	for _, s := range fig.Series {
		for _, v := range s.Values {
			m = math.Max(m, v)
		}
	}
	if m == 0 {
		return 1
	}
	return m
}

// drawBars draws grouped vertical bars, one group per label.
func drawBars(b *strings.Builder, fig figure, x, y, w, h float64) {
	n := len(fig.Labels)
	if n == 0 {
		return
	}
	peak := maxValue(fig)
	groupW := w / float64(n)
	barW := groupW * 0.8 / float64(len(fig.Series))
	fontSize := math.Max(8, math.Min(12, groupW/6))

	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`+"\n", x, y+h, x+w, y+h)
	for i, label := range fig.Labels {
		gx := x + float64(i)*groupW + groupW*0.1
		for j, s := range fig.Series {
			v := s.Values[i]
			bh := h * v / peak
			fill := colour(s.Name, j)
			if len(fig.Series) == 1 {
				fill = colour(label, i)
			}
			fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s %s: %.0f</title></rect>`+"\n",
				gx+float64(j)*barW, y+h-bh, barW, bh, fill, html.EscapeString(label), html.EscapeString(s.Name), v)
			if len(fig.Series) == 1 {
				fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="%.0f" text-anchor="middle">%.0f</text>`+"\n",
					gx+barW/2, y+h-bh-3, fontSize, v)
			}
		}
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="%.0f" text-anchor="middle">%s</text>`+"\n",
			x+float64(i)*groupW+groupW/2, y+h+fontSize+4, fontSize, html.EscapeString(label))
	}
	if len(fig.Series) > 1 {
		drawLegend(b, fig.Series, 0, x, y+h+2*fontSize+10, fontSize)
	}
}

// drawLines draws one polyline per series.
func drawLines(b *strings.Builder, fig figure, x, y, w, h float64) {
	n := len(fig.Labels)
	if n == 0 {
		return
	}
	peak := maxValue(fig)
	step := w
	if n > 1 {
		step = w / float64(n-1)
	}
	fontSize := math.Max(8, math.Min(12, step/5))

	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`+"\n", x, y+h, x+w, y+h)
	for j, s := range fig.Series {
		points := make([]string, n)
		for i, v := range s.Values {
			points[i] = fmt.Sprintf("%.1f,%.1f", x+float64(i)*step, y+h-h*v/peak)
		}
		fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
			strings.Join(points, " "), colour(s.Name, j+3))
	}
	for i, label := range fig.Labels {
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="%.0f" text-anchor="middle">%s</text>`+"\n",
			x+float64(i)*step, y+h+fontSize+4, fontSize, html.EscapeString(label))
	}
	drawLegend(b, fig.Series, 3, x, y+h+2*fontSize+10, fontSize)
}

// drawPie draws the first series as a pie with a legend.
func drawPie(b *strings.Builder, fig figure, x, y, w, h float64) {
	if len(fig.Series) == 0 {
		return
	}
	values := fig.Series[0].Values
	total := 0.0
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return
	}

	r := math.Min(w*0.6, h) * 0.42
	cx, cy := x+w*0.35, y+h/2
	angle := -math.Pi / 2
	fontSize := math.Max(8, math.Min(12, h/20))
	for i, v := range values {
		if v == 0 {
			continue
		}
		fill := colour(fig.Labels[i], i)
		share := v / total
		if share >= 1 {
			fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", cx, cy, r, fill)
		} else {
			end := angle + 2*math.Pi*share
			large := 0
			if share > 0.5 {
				large = 1
			}
			fmt.Fprintf(b, `<path d="M%.1f,%.1f L%.1f,%.1f A%.1f,%.1f 0 %d 1 %.1f,%.1f Z" fill="%s" stroke="#fff"/>`+"\n",
				cx, cy, cx+r*math.Cos(angle), cy+r*math.Sin(angle), r, r, large, cx+r*math.Cos(end), cy+r*math.Sin(end), fill)
			angle = end
		}
		ly := y + h*0.15 + float64(i)*(fontSize+6)
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.0f" height="%.0f" fill="%s"/>`+"\n", x+w*0.72, ly-fontSize+2, fontSize, fontSize, fill)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="%.0f">%s %.1f%%</text>`+"\n",
			x+w*0.72+fontSize+4, ly, fontSize, html.EscapeString(fig.Labels[i]), share*100)
	}
}

func drawLegend(b *strings.Builder, ss []series, offset int, x, y, fontSize float64) {
	cx := x
	for j, s := range ss {
		fill := colour(s.Name, j+offset)
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.0f" height="%.0f" fill="%s"/>`+"\n", cx, y-fontSize+2, fontSize, fontSize, fill)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="%.0f">%s</text>`+"\n", cx+fontSize+4, y, fontSize, html.EscapeString(s.Name))
		cx += fontSize + 12 + float64(len([]rune(s.Name)))*fontSize*0.6
	}
}
