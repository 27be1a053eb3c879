package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/rollup"
)

// percent renders a fraction as a percentage with two decimals
func percent(f float64) float64 {
	return decimal.NewFromFloat(f).Shift(2).Round(2).InexactFloat64()
}

// money rounds a currency amount to cents
func money(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

type metricsView struct {
	Impressions int64   `json:"impressions"`
	Reach       int64   `json:"reach"`
	Engagement  int64   `json:"engagement"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
}

func renderMetrics(m domain.Metrics) metricsView {
	return metricsView{
		Impressions: m.Impressions,
		Reach:       m.Reach,
		Engagement:  m.Engagement,
		Clicks:      m.Clicks,
		Conversions: m.Conversions,
		Spend:       money(m.Spend),
	}
}

type overviewView struct {
	Totals         metricsView `json:"totals"`
	Events         int64       `json:"events"`
	CTR            float64     `json:"ctr"`
	EngagementRate float64     `json:"engagementRate"`
	ConversionRate float64     `json:"conversionRate"`
	CPC            float64     `json:"cpc"`
}

func renderOverview(o rollup.Overview) overviewView {
	return overviewView{
		Totals:         renderMetrics(o.Totals),
		Events:         o.Events,
		CTR:            percent(o.CTR),
		EngagementRate: percent(o.EngagementRate),
		ConversionRate: percent(o.ConversionRate),
		CPC:            money(o.CPC),
	}
}

type pointView struct {
	Key     string      `json:"key"`
	Start   time.Time   `json:"start"`
	Metrics metricsView `json:"metrics"`
	Events  int64       `json:"events"`
}

func renderSeries(points []rollup.Point) []pointView {
	out := make([]pointView, 0, len(points))
	for _, p := range points {
		out = append(out, pointView{Key: p.Key, Start: p.Start, Metrics: renderMetrics(p.Metrics), Events: p.Events})
	}
	return out
}

type platformView struct {
	Platform domain.Platform `json:"platform"`
	Metrics  metricsView     `json:"metrics"`
	Events   int64           `json:"events"`
}

func renderPlatforms(stats []rollup.PlatformStat) []platformView {
	out := make([]platformView, 0, len(stats))
	for _, s := range stats {
		out = append(out, platformView{Platform: s.Platform, Metrics: renderMetrics(s.Metrics), Events: s.Events})
	}
	return out
}

type dashboardView struct {
	Overview    overviewView   `json:"overview"`
	Granularity string         `json:"granularity"`
	Series      []pointView    `json:"series"`
	Platforms   []platformView `json:"platforms"`
}

func renderDashboard(d rollup.Dashboard) dashboardView {
	return dashboardView{
		Overview:    renderOverview(d.Overview),
		Granularity: d.Granularity,
		Series:      renderSeries(d.Series),
		Platforms:   renderPlatforms(d.Platforms),
	}
}

type snapshotView struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	ROAS        float64 `json:"roas"`
}

type performanceView struct {
	CampaignID      string                `json:"campaignId"`
	Name            string                `json:"name"`
	Status          domain.CampaignStatus `json:"status"`
	Budget          float64               `json:"budget"`
	Spent           float64               `json:"spent"`
	Snapshot        snapshotView          `json:"snapshot"`
	Posts           int                   `json:"posts"`
	Engagement      domain.Engagement     `json:"engagement"`
	TotalEngagement int64                 `json:"totalEngagement"`
	Events          overviewView          `json:"events"`
}

// renderPerformance keeps the stored snapshot rates as entered and only
// rounds them; the live event rates are fractions and become percentages.
func renderPerformance(p rollup.CampaignPerformance) performanceView {
	return performanceView{
		CampaignID: p.CampaignID,
		Name:       p.Name,
		Status:     p.Status,
		Budget:     money(p.Budget),
		Spent:      money(p.Spent),
		Snapshot: snapshotView{
			Impressions: p.Snapshot.Impressions,
			Clicks:      p.Snapshot.Clicks,
			Conversions: p.Snapshot.Conversions,
			CTR:         money(p.Snapshot.CTR),
			CPC:         money(p.Snapshot.CPC),
			ROAS:        money(p.Snapshot.ROAS),
		},
		Posts:           p.Posts,
		Engagement:      p.Engagement,
		TotalEngagement: p.TotalEngagement,
		Events:          renderOverview(p.Events),
	}
}
