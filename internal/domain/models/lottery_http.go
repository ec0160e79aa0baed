package models

// Requests for lottery HTTP endpoints. Defined in domain for consistency and reuse.

type StatsRequest struct {
	Period       string   `query:"period" json:"period" default:"1y" validate:"oneof=6m 1y 2y all"`
	Window       *int     `query:"window" json:"window" default:"50" validate:"omitempty,gte=1,lte=1000"`
	WeightPeriod *float64 `query:"weight_period" json:"weight_period" default:"0.7" validate:"omitempty,gte=0"`
	WeightRecent *float64 `query:"weight_recent" json:"weight_recent" default:"0.3" validate:"omitempty,gte=0"`
}

// Params maps the request onto the aggregator input.
func (r *StatsRequest) Params() StatsParams {
	return StatsParams{
		Period:           r.Period,
		RecentWindowSize: r.Window,
		WeightPeriod:     r.WeightPeriod,
		WeightRecent:     r.WeightRecent,
	}
}

// Count, Risk and Limit are pointers so an explicit zero reaches the
// validator instead of being replaced by the default.
type TicketsRequest struct {
	StatsRequest
	Count *int     `query:"count" json:"count" default:"1" validate:"omitempty,gte=1,lte=10"`
	Risk  *float64 `query:"risk" json:"risk" default:"1.5" validate:"omitempty,gte=0.1,lte=5"`
	Seed  string   `query:"seed" json:"seed" validate:"omitempty,max=128"`
}

func (r *TicketsRequest) Params() GenerateParams {
	return GenerateParams{
		TicketCount: derefOr(r.Count, 1),
		RiskFactor:  derefOr(r.Risk, 1.5),
		Seed:        r.Seed,
		Stats:       r.StatsRequest.Params(),
	}
}

type DrawsRequest struct {
	Limit *int `query:"limit" json:"limit" default:"20" validate:"omitempty,gte=1,lte=500"`
}

// LimitOrDefault returns the requested limit, 20 when absent.
func (r *DrawsRequest) LimitOrDefault() int { return derefOr(r.Limit, 20) }

func derefOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
