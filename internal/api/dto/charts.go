package dto

import (
	"flight-market-service/internal/services"
)

// Chart follows the {data, layout} shape plotting clients consume directly.
// Axis arrays are always present, even when empty.
type Chart struct {
	Data   []ChartTrace `json:"data"`
	Layout ChartLayout  `json:"layout"`
}

type ChartTrace struct {
	Type string    `json:"type"`
	Name string    `json:"name,omitempty"`
	Mode string    `json:"mode,omitempty"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
}

type PieChart struct {
	Data   []PieTrace  `json:"data"`
	Layout ChartLayout `json:"layout"`
}

type PieTrace struct {
	Type   string   `json:"type"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Hole   float64  `json:"hole,omitempty"`
}

type Axis struct {
	Title string `json:"title"`
}

type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ShowArrow bool    `json:"showarrow"`
}

type ChartLayout struct {
	Title       string       `json:"title"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	Height      int          `json:"height"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// NoPriceTrendsText annotates a price chart with no series.
const NoPriceTrendsText = "No price trend data available"

type ChartsResponse struct {
	PopularRoutes      Chart    `json:"popular_routes"`
	PriceTrends        Chart    `json:"price_trends"`
	DemandDistribution PieChart `json:"demand_distribution"`
	HourlyDistribution Chart    `json:"hourly_distribution"`
}

type VisualizationsResponse struct {
	Success bool           `json:"success"`
	Charts  ChartsResponse `json:"charts"`
}

const chartHeight = 400

func NewVisualizationsResponse(c services.Charts) VisualizationsResponse {
	return VisualizationsResponse{
		Success: true,
		Charts: ChartsResponse{
			PopularRoutes:      barChart(c.PopularRoutes),
			PriceTrends:        lineChart(c.PriceTrends),
			DemandDistribution: pieChart(c.DemandDistribution),
			HourlyDistribution: barChart(c.HourlyDistribution),
		},
	}
}

func barChart(b services.BarChart) Chart {
	y := make([]float64, 0, len(b.Y))
	for _, v := range b.Y {
		y = append(y, float64(v))
	}
	return Chart{
		Data: []ChartTrace{{Type: "bar", Name: b.YTitle, X: nonNil(b.X), Y: y}},
		Layout: ChartLayout{
			Title:  b.Title,
			XAxis:  &Axis{Title: b.XTitle},
			YAxis:  &Axis{Title: b.YTitle},
			Height: chartHeight,
		},
	}
}

func lineChart(l services.LineChart) Chart {
	traces := make([]ChartTrace, 0, len(l.Series))
	for _, s := range l.Series {
		y := make([]float64, 0, len(s.Y))
		for _, v := range s.Y {
			y = append(y, Round2(v))
		}
		traces = append(traces, ChartTrace{Type: "scatter", Mode: "lines+markers", Name: s.Name, X: nonNil(s.X), Y: y})
	}
	c := Chart{
		Data: traces,
		Layout: ChartLayout{
			Title:  l.Title,
			XAxis:  &Axis{Title: l.XTitle},
			YAxis:  &Axis{Title: l.YTitle},
			Height: chartHeight,
		},
	}
	if len(traces) == 0 {
		c.Layout.Annotations = []Annotation{{
			Text: NoPriceTrendsText,
			XRef: "paper",
			YRef: "paper",
			X:    0.5,
			Y:    0.5,
		}}
	}
	return c
}

func pieChart(p services.PieChart) PieChart {
	values := p.Values
	if values == nil {
		values = []int{}
	}
	return PieChart{
		Data: []PieTrace{{
			Type:   "pie",
			Labels: nonNil(p.Labels),
			Values: values,
			Hole:   0.3,
		}},
		Layout: ChartLayout{Title: p.Title, Height: chartHeight},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func NewAttemptResponses(attempts []services.Attempt) []AttemptResponse {
	out := make([]AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, AttemptResponse{
			Source:     string(a.Source),
			Accepted:   a.Accepted,
			Records:    a.Count,
			Reason:     a.Reason,
			StatusCode: a.StatusCode,
			LatencyMS:  a.Latency.Milliseconds(),
		})
	}
	return out
}
