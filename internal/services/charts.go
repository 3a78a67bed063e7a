package services

import (
	"cmp"
	"flight-market-service/internal/domain"
	"fmt"
	"slices"
)

type BarChart struct {
	Title  string
	XTitle string
	YTitle string
	X      []string
	Y      []int
}

type LineSeries struct {
	Name string
	X    []string
	Y    []float64
}

type LineChart struct {
	Title  string
	XTitle string
	YTitle string
	Series []LineSeries
}

type PieChart struct {
	Title  string
	Labels []string
	Values []int
}

// Charts holds chart-ready axis arrays and series; rendering is the client's job.
type Charts struct {
	PopularRoutes      BarChart
	PriceTrends        LineChart
	DemandDistribution PieChart
	HourlyDistribution BarChart
}

func BuildCharts(records []domain.FlightRecord) Charts {
	return Charts{
		PopularRoutes:      routesChart(PopularRoutes(records, ChartRoutesLimit)),
		PriceTrends:        priceChart(PriceTrends(records), ChartPriceRoutes),
		DemandDistribution: destinationsChart(AnalyzeDemand(records).PopularDestinations),
		HourlyDistribution: hourlyChart(HourlyDistribution(records)),
	}
}

func routesChart(routes []domain.RouteAggregate) BarChart {
	c := BarChart{
		Title:  "Most Popular Flight Routes",
		XTitle: "Routes",
		YTitle: "Number of Flights",
		X:      make([]string, 0, len(routes)),
		Y:      make([]int, 0, len(routes)),
	}
	for _, r := range routes {
		c.X = append(c.X, r.Route)
		c.Y = append(c.Y, r.FlightCount)
	}
	return c
}

// priceChart draws one line per route for the topN routes by total flights,
// each ordered by date ascending.
func priceChart(points []domain.PriceTrendPoint, topN int) LineChart {
	c := LineChart{
		Title:  fmt.Sprintf("Price Trends Over Time (Top %d Routes)", topN),
		XTitle: "Date",
		YTitle: "Average Price ($)",
		Series: []LineSeries{},
	}

	totals := map[string]int{}
	byRoute := map[string][]domain.PriceTrendPoint{}
	for _, p := range points {
		totals[p.Route] += p.FlightCount
		byRoute[p.Route] = append(byRoute[p.Route], p)
	}

	routes := make([]string, 0, len(totals))
	for r := range totals {
		routes = append(routes, r)
	}
	slices.SortFunc(routes, func(a, b string) int {
		if c := cmp.Compare(totals[b], totals[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(routes) > topN {
		routes = routes[:topN]
	}

	for _, r := range routes {
		pts := byRoute[r]
		slices.SortFunc(pts, func(a, b domain.PriceTrendPoint) int { return cmp.Compare(a.Date, b.Date) })

		s := LineSeries{Name: r, X: make([]string, 0, len(pts)), Y: make([]float64, 0, len(pts))}
		for _, p := range pts {
			s.X = append(s.X, p.Date)
			s.Y = append(s.Y, p.AvgPrice)
		}
		c.Series = append(c.Series, s)
	}
	return c
}

func destinationsChart(dests []domain.DestinationStat) PieChart {
	c := PieChart{
		Title:  "Popular Destinations Distribution",
		Labels: make([]string, 0, len(dests)),
		Values: make([]int, 0, len(dests)),
	}
	for _, d := range dests {
		c.Labels = append(c.Labels, d.Destination)
		c.Values = append(c.Values, d.ArrivalCount)
	}
	return c
}

func hourlyChart(hours [24]int) BarChart {
	c := BarChart{
		Title:  "Departures by Hour of Day",
		XTitle: "Hour",
		YTitle: "Number of Flights",
		X:      make([]string, 24),
		Y:      make([]int, 24),
	}
	for h, n := range hours {
		c.X[h] = fmt.Sprintf("%02d:00", h)
		c.Y[h] = n
	}
	return c
}
