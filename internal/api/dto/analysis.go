package dto

import (
	"flight-market-service/internal/domain"
	"time"
)

type RouteResponse struct {
	Route       string  `json:"route"`
	Cities      string  `json:"cities"`
	FlightCount int     `json:"flight_count"`
	AvgPrice    float64 `json:"avg_price"`
	AvgDemand   float64 `json:"avg_demand"`
}

type DemandPeriodResponse struct {
	Date        string  `json:"date"`
	AvgDemand   float64 `json:"avg_demand"`
	FlightCount int     `json:"flight_count"`
}

type DestinationResponse struct {
	Destination  string  `json:"destination"`
	ArrivalCount int     `json:"arrival_count"`
	AvgDemand    float64 `json:"avg_demand"`
	AvgPrice     float64 `json:"avg_price"`
}

type DemandAnalysisResponse struct {
	HighDemandPeriods   []DemandPeriodResponse `json:"high_demand_periods"`
	PopularDestinations []DestinationResponse  `json:"popular_destinations"`
}

type PriceTrendResponse struct {
	Date        string  `json:"date"`
	Route       string  `json:"route"`
	AvgPrice    float64 `json:"avg_price"`
	FlightCount int     `json:"flight_count"`
}

type AnalyzeResponse struct {
	Success       bool                   `json:"success"`
	PopularRoutes []RouteResponse        `json:"popular_routes"`
	Demand        DemandAnalysisResponse `json:"demand_analysis"`
	PriceTrends   []PriceTrendResponse   `json:"price_trends"`
	Summary       FlightSummaryResponse  `json:"flight_summary"`
	AIInsights    string                 `json:"ai_insights"`
	InsightsMode  string                 `json:"insights_mode"`
}

func NewAnalyzeResponse(s domain.MarketInsightSummary) AnalyzeResponse {
	return AnalyzeResponse{
		Success:       true,
		PopularRoutes: NewRouteResponses(s.PopularRoutes),
		Demand:        NewDemandAnalysisResponse(s.Demand),
		PriceTrends:   NewPriceTrendResponses(s.PriceTrends),
		Summary:       NewFlightSummaryResponse(s.Summary),
		AIInsights:    s.Narrative.Text,
		InsightsMode:  s.Narrative.Mode,
	}
}

func NewRouteResponses(routes []domain.RouteAggregate) []RouteResponse {
	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, RouteResponse{
			Route:       r.Route,
			Cities:      r.Cities,
			FlightCount: r.FlightCount,
			AvgPrice:    Round2(r.AvgPrice),
			AvgDemand:   Round2(r.AvgDemand),
		})
	}
	return out
}

func NewDemandAnalysisResponse(d domain.DemandAnalysis) DemandAnalysisResponse {
	res := DemandAnalysisResponse{
		HighDemandPeriods:   make([]DemandPeriodResponse, 0, len(d.HighDemandPeriods)),
		PopularDestinations: make([]DestinationResponse, 0, len(d.PopularDestinations)),
	}
	for _, p := range d.HighDemandPeriods {
		res.HighDemandPeriods = append(res.HighDemandPeriods, DemandPeriodResponse{
			Date:        p.Date,
			AvgDemand:   Round2(p.AvgDemand),
			FlightCount: p.FlightCount,
		})
	}
	for _, dest := range d.PopularDestinations {
		res.PopularDestinations = append(res.PopularDestinations, DestinationResponse{
			Destination:  dest.Destination,
			ArrivalCount: dest.ArrivalCount,
			AvgDemand:    Round2(dest.AvgDemand),
			AvgPrice:     Round2(dest.AvgPrice),
		})
	}
	return res
}

func NewPriceTrendResponses(points []domain.PriceTrendPoint) []PriceTrendResponse {
	out := make([]PriceTrendResponse, 0, len(points))
	for _, p := range points {
		out = append(out, PriceTrendResponse{
			Date:        p.Date,
			Route:       p.Route,
			AvgPrice:    Round2(p.AvgPrice),
			FlightCount: p.FlightCount,
		})
	}
	return out
}

type MarketTrendResponse struct {
	Route           string    `json:"route"`
	Date            string    `json:"date"`
	DemandLevel     string    `json:"demand_level"`
	AvgPrice        float64   `json:"avg_price"`
	FlightCount     int       `json:"flight_count"`
	PopularityScore float64   `json:"popularity_score"`
	CreatedAt       time.Time `json:"created_at"`
}

type MarketTrendsResponse struct {
	Success bool                  `json:"success"`
	Trends  []MarketTrendResponse `json:"trends"`
}

func NewMarketTrendsResponse(trends []domain.MarketTrend) MarketTrendsResponse {
	res := MarketTrendsResponse{Success: true, Trends: make([]MarketTrendResponse, 0, len(trends))}
	for _, t := range trends {
		res.Trends = append(res.Trends, MarketTrendResponse{
			Route:           t.Route,
			Date:            t.Date,
			DemandLevel:     t.DemandLevel,
			AvgPrice:        Round2(t.AvgPrice),
			FlightCount:     t.FlightCount,
			PopularityScore: Round2(t.PopularityScore),
			CreatedAt:       t.CreatedAt,
		})
	}
	return res
}
