package chart

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// series is one named row of values aligned with figure labels.
type series struct {
	Name   string
	Values []float64
}

// figure is the renderer-neutral description of one chart. A dashboard
// figure has panels instead of series.
type figure struct {
	Title  string
	Style  domain.ChartStyle
	Labels []string
	Series []series
	Panels []figure
}

// empty reports whether the figure plots nothing.
func (f figure) empty() bool {
	if len(f.Panels) > 0 {
		for _, p := range f.Panels {
			if !p.empty() {
				return false
			}
		}
		return true
	}
	for _, s := range f.Series {
		for _, v := range s.Values {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

// buildFigure turns a dataset into the figure for kind.
func buildFigure(kind domain.ChartKind, ds *dataset) (figure, error) {
	spec, ok := domain.LookupChart(kind)
	if !ok {
		return figure{}, fmt.Errorf("%w: unknown chart kind %q", domain.ErrInvalidInput, kind)
	}

	var fig figure
	switch kind {
	case domain.ChartSentimentBar, domain.ChartSentimentPie:
		fig = single(ds.count(sentimentKey), sentimentLabels())
	case domain.ChartCategoryBar, domain.ChartCategoryPie:
		fig = single(ds.count(categoryKey), categoryLabels())
	case domain.ChartMarketBar, domain.ChartMarketPie:
		fig = single(ds.count(marketKey), ds.markets())
	case domain.ChartTopicBar, domain.ChartTopicPie:
		fig = distribution(domain.NewDistribution(ds.count(topicKey)))
	case domain.ChartMarketSentiment:
		fig = breakdown(ds, sentimentLabels(), sentimentKey)
	case domain.ChartMarketCategory:
		fig = breakdown(ds, categoryLabels(), categoryKey)
	case domain.ChartEntityBar:
		fig = distribution(ds.mentions())
	case domain.ChartTimeSeries:
		fig = timeSeries(ds)
	case domain.ChartOverview:
		fig = overview(ds)
	}

	fig.Title = spec.Title
	fig.Style = spec.Style
	if fig.empty() {
		return figure{}, domain.ErrNoChartData
	}
	return fig, nil
}

func single(counts map[string]int, labels []string) figure {
	values := make([]float64, len(labels))
	for i, l := range labels {
		values[i] = float64(counts[l])
	}
	return figure{Labels: labels, Series: []series{{Name: "Feedback", Values: values}}}
}

func distribution(d domain.Distribution) figure {
	fig := figure{Series: []series{{Name: "Feedback"}}}
	for _, c := range d {
		fig.Labels = append(fig.Labels, c.Label)
		fig.Series[0].Values = append(fig.Series[0].Values, float64(c.N))
	}
	return fig
}

// breakdown groups one metadata key per market.
func breakdown(ds *dataset, groups []string, key func(domain.EntryMetadata) string) figure {
	markets := ds.markets()
	index := make(map[string]int, len(markets))
	for i, m := range markets {
		index[m] = i
	}

	fig := figure{Labels: markets}
	for _, g := range groups {
		fig.Series = append(fig.Series, series{Name: g, Values: make([]float64, len(markets))})
	}
	for _, r := range ds.records {
		i, ok := index[r.meta.Market]
		if !ok {
			continue
		}
		for j, g := range groups {
			if key(r.meta) == g {
				fig.Series[j].Values[i]++
			}
		}
	}
	return fig
}

// timeSeries plots monthly volume and score categories.
func timeSeries(ds *dataset) figure {
	months, byMonth := ds.months()
	fig := figure{Labels: months}
	total := series{Name: "Feedback", Values: make([]float64, len(months))}
	cats := make([]series, 0, 3)
	for _, c := range categoryLabels() {
		cats = append(cats, series{Name: c, Values: make([]float64, len(months))})
	}
	for i, m := range months {
		for _, meta := range byMonth[m] {
			total.Values[i]++
			for j, c := range categoryLabels() {
				if string(meta.Category) == c {
					cats[j].Values[i]++
				}
			}
		}
	}
	fig.Series = append([]series{total}, cats...)
	return fig
}

// overview combines the four headline charts.
func overview(ds *dataset) figure {
	panels := []struct {
		title string
		style domain.ChartStyle
		fig   figure
	}{
		{"Sentiment", domain.StylePie, single(ds.count(sentimentKey), sentimentLabels())},
		{"Score categories", domain.StyleBar, single(ds.count(categoryKey), categoryLabels())},
		{"Markets", domain.StyleBar, single(ds.count(marketKey), ds.markets())},
		{"Topics", domain.StyleBar, distribution(domain.NewDistribution(ds.count(topicKey)))},
	}

	var fig figure
	for _, p := range panels {
		p.fig.Title = p.title
		p.fig.Style = p.style
		fig.Panels = append(fig.Panels, p.fig)
	}
	return fig
}

// caption summarises the plotted numbers in one line.
func caption(fig figure, records int) string {
	if len(fig.Panels) > 0 {
		parts := make([]string, 0, len(fig.Panels))
		for _, p := range fig.Panels {
			parts = append(parts, caption(p, -1))
		}
		return fmt.Sprintf("%s (%d records). %s", fig.Title, records, strings.Join(parts, " "))
	}

	var parts []string
	if len(fig.Series) > 0 {
		s := fig.Series[0]
		for i, l := range fig.Labels {
			if i == 5 {
				parts = append(parts, "...")
				break
			}
			parts = append(parts, fmt.Sprintf("%s %.0f", l, s.Values[i]))
		}
	}
	if records < 0 {
		return fmt.Sprintf("%s: %s.", fig.Title, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s (%d records): %s.", fig.Title, records, strings.Join(parts, ", "))
}

func sentimentLabels() []string {
	out := make([]string, 0, 3)
	for _, s := range domain.AllSentiments() {
		out = append(out, string(s))
	}
	return out
}

func categoryLabels() []string {
	out := make([]string, 0, 3)
	for _, c := range domain.AllScoreCategories() {
		out = append(out, string(c))
	}
	return out
}
