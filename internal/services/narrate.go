package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/logging"
	"flight-market-service/internal/metrics"
	"flight-market-service/internal/ports"
	"fmt"
	"strings"
)

// NoDataNarrative is the rule-based text for an empty dataset.
const NoDataNarrative = "No flight data is available yet. Collect flights to generate market insights."

// InsightInput is everything the narrator may talk about.
type InsightInput struct {
	Summary domain.FlightSummary
	Routes  []domain.RouteAggregate
	Demand  domain.DemandAnalysis
}

// Narrator turns aggregates into prose. With no generator configured it never
// leaves the process; otherwise any generator failure falls back to the
// rule-based text.
type Narrator struct {
	gen   ports.InsightGenerator
	cache ports.InsightCache
}

// NewNarrator accepts a nil generator (rule-based only) and a nil cache.
func NewNarrator(gen ports.InsightGenerator, cache ports.InsightCache) *Narrator {
	return &Narrator{gen: gen, cache: cache}
}

// UsesLLM reports whether an external generator is configured.
func (n *Narrator) UsesLLM() bool {
	return n != nil && n.gen != nil
}

func (n *Narrator) Narrate(ctx context.Context, in InsightInput) domain.Narrative {
	if !n.UsesLLM() || in.Summary.TotalFlights == 0 {
		return n.ruleBased(in)
	}

	prompt := BuildPrompt(in)
	digest := promptDigest(prompt)
	log := logging.Ctx(ctx)

	if n.cache != nil {
		text, ok, err := n.cache.Get(ctx, digest)
		if err != nil {
			log.Warn().Err(err).Msg("insight cache lookup failed")
		}
		if ok && text != "" {
			metrics.NarrativesTotal.WithLabelValues(domain.NarrativeLLM).Inc()
			return domain.Narrative{Text: text, Mode: domain.NarrativeLLM}
		}
	}

	text, err := n.gen.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("llm narrative failed, using rule-based insights")
		return n.ruleBased(in)
	}

	if n.cache != nil {
		if err := n.cache.Put(ctx, digest, text); err != nil {
			log.Warn().Err(err).Msg("insight cache write failed")
		}
	}

	metrics.NarrativesTotal.WithLabelValues(domain.NarrativeLLM).Inc()
	return domain.Narrative{Text: text, Mode: domain.NarrativeLLM}
}

func (n *Narrator) ruleBased(in InsightInput) domain.Narrative {
	metrics.NarrativesTotal.WithLabelValues(domain.NarrativeRuleBased).Inc()
	return domain.Narrative{Text: RuleBasedNarrative(in.Summary), Mode: domain.NarrativeRuleBased}
}

// RuleBasedNarrative renders one templated sentence per dimension: peak hour,
// market leader, top origin, punctuality and traffic volume.
func RuleBasedNarrative(s domain.FlightSummary) string {
	if s.TotalFlights == 0 {
		return NoDataNarrative
	}

	insights := make([]string, 0, 5)

	h := s.BusiestHour
	switch {
	case h >= 6 && h <= 10:
		insights = append(insights, fmt.Sprintf("Peak Demand: Morning rush (around %02d:00) shows the highest flight activity, ideal timing for early check-ins.", h))
	case h >= 15 && h <= 19:
		insights = append(insights, fmt.Sprintf("Peak Demand: Afternoon and evening (around %02d:00) is the busiest period, the best window for arrival-day marketing.", h))
	default:
		insights = append(insights, fmt.Sprintf("Peak Demand: An unusual peak at %02d:00 suggests distinctive travel patterns in this market.", h))
	}

	if len(s.AirlineDistribution) > 0 {
		top := s.AirlineDistribution[0]
		share := float64(top.Count) / float64(s.TotalFlights) * 100
		insights = append(insights, fmt.Sprintf("Market Leader: %s leads with %d flights (%.1f%% market share).", top.Label, top.Count, share))
	} else {
		insights = append(insights, "Market Leader: No carrier stands out because no airline names were captured.")
	}

	if len(s.OriginDistribution) > 0 {
		top := s.OriginDistribution[0]
		insights = append(insights, fmt.Sprintf("Popular Route: %s is the top origin with %d flights, a high demand corridor for travellers.", top.Label, top.Count))
	} else {
		insights = append(insights, "Popular Route: Origins were not captured, so no corridor stands out yet.")
	}

	rate := s.OnTimePercentage
	switch {
	case rate >= 80:
		insights = append(insights, fmt.Sprintf("Excellent Performance: A %.2f%% on-time rate indicates reliable service for business travellers.", rate))
	case rate >= 60:
		insights = append(insights, fmt.Sprintf("Moderate Performance: A %.2f%% on-time rate suggests some delays, so bookings need flexibility.", rate))
	default:
		insights = append(insights, fmt.Sprintf("Performance Issues: A %.2f%% on-time rate points to frequent delays and more extended stays.", rate))
	}

	if s.TotalFlights > 20 {
		insights = append(insights, fmt.Sprintf("High Traffic: %d flights indicate strong market demand.", s.TotalFlights))
	} else {
		insights = append(insights, fmt.Sprintf("Moderate Traffic: %d flights suggest steady but manageable demand.", s.TotalFlights))
	}

	return strings.Join(insights, "\n\n")
}

// BuildPrompt renders the aggregates into the LLM user prompt.
func BuildPrompt(in InsightInput) string {
	var b strings.Builder

	b.WriteString("Analyze these Australian airline booking trends and provide five concise insights for hostel operators.\n\n")

	if in.Summary.Target != "" {
		fmt.Fprintf(&b, "Airport: %s\n", in.Summary.Target)
	}
	fmt.Fprintf(&b, "Total flights: %d\n", in.Summary.TotalFlights)
	fmt.Fprintf(&b, "Busiest hour: %02d:00\n", in.Summary.BusiestHour)
	fmt.Fprintf(&b, "On-time performance: %.2f%%\n", in.Summary.OnTimePercentage)
	fmt.Fprintf(&b, "Top airlines: %s\n", joinLabels(in.Summary.AirlineDistribution, 3))
	fmt.Fprintf(&b, "Top origins: %s\n", joinLabels(in.Summary.OriginDistribution, 3))

	routes := in.Routes
	if len(routes) > 5 {
		routes = routes[:5]
	}
	if len(routes) > 0 {
		b.WriteString("Top routes:\n")
		for _, r := range routes {
			fmt.Fprintf(&b, "- %s: %d flights, average price $%.2f, average demand %.2f\n", r.Route, r.FlightCount, r.AvgPrice, r.AvgDemand)
		}
	}

	dests := in.Demand.PopularDestinations
	if len(dests) > 3 {
		dests = dests[:3]
	}
	if len(dests) > 0 {
		names := make([]string, 0, len(dests))
		for _, d := range dests {
			names = append(names, d.Destination)
		}
		fmt.Fprintf(&b, "Popular destinations: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "High demand periods identified: %d\n", len(in.Demand.HighDemandPeriods))

	b.WriteString("\nFocus on peak travel periods, airline market share, route popularity, operational reliability and market opportunities.")

	return b.String()
}

func joinLabels(counts []domain.LabelCount, n int) string {
	if len(counts) == 0 {
		return "none"
	}
	if len(counts) > n {
		counts = counts[:n]
	}
	labels := make([]string, 0, len(counts))
	for _, c := range counts {
		labels = append(labels, c.Label)
	}
	return strings.Join(labels, ", ")
}

func promptDigest(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
