package models

import "time"

// Session status constants
const (
	StatusTraining  = "training"
	StatusOrdering  = "ordering"
	StatusRevealing = "revealing"
	StatusFinished  = "finished"
)

// Classroom defaults applied when a create request omits a parameter.
const (
	DefaultDemandMu    = 50.0
	DefaultDemandSigma = 20.0
	DefaultPrice       = 1.0
	DefaultCost        = 0.2
	DefaultSalvage     = 0.0
	DefaultWeeks       = 10
	DefaultNTrain      = 50
)

// Request types

type CreateSessionRequest struct {
	DemandMu    *float64 `json:"demand_mu"`
	DemandSigma *float64 `json:"demand_sigma"`
	Price       *float64 `json:"price"`
	Cost        *float64 `json:"cost"`
	Salvage     *float64 `json:"salvage"`
	Weeks       *int     `json:"weeks"`
}

// SessionParams is a fully defaulted set of creation parameters.
// Normalized is the only place the defaults are applied.
type SessionParams struct {
	DemandMu    float64
	DemandSigma float64
	Price       float64
	Cost        float64
	Salvage     float64
	Weeks       int
	NTrain      int
}

func (r CreateSessionRequest) Normalized() SessionParams {
	p := SessionParams{
		DemandMu:    DefaultDemandMu,
		DemandSigma: DefaultDemandSigma,
		Price:       DefaultPrice,
		Cost:        DefaultCost,
		Salvage:     DefaultSalvage,
		Weeks:       DefaultWeeks,
		NTrain:      DefaultNTrain,
	}
	if r.DemandMu != nil {
		p.DemandMu = *r.DemandMu
	}
	if r.DemandSigma != nil {
		p.DemandSigma = *r.DemandSigma
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Cost != nil {
		p.Cost = *r.Cost
	}
	if r.Salvage != nil {
		p.Salvage = *r.Salvage
	}
	if r.Weeks != nil {
		p.Weeks = *r.Weeks
	}
	return p
}

type JoinSessionRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	AllowTakeover bool   `json:"allow_takeover"`
	PlayerToken   string `json:"player_token,omitempty"`
}

type SubmitOrderRequest struct {
	WeekIndex int `json:"week_index"`
	OrderQty  int `json:"order_qty"`
}

// Response types

type CreateSessionResponse struct {
	SessionID  string `json:"session_id"`
	Code       string `json:"code"`
	HostKey    string `json:"host_key"`
	DrawFailed bool   `json:"draw_failed"`
}

type JoinSessionResponse struct {
	SessionID   string `json:"session_id"`
	PlayerID    string `json:"player_id"`
	PlayerToken string `json:"player_token"`
	Resumed     bool   `json:"resumed"`
}

type SubmitOrderResponse struct {
	OK bool `json:"ok"`
}

type RevealResponse struct {
	OK          bool   `json:"ok"`
	RevealIndex int    `json:"reveal_index"`
	Status      string `json:"status"`
}

type FinishWeekResponse struct {
	Updated      int `json:"updated"`
	DefaultOrder int `json:"default_order"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

// SessionPublic is the player-facing view. It never carries the hidden
// in-game demand series or the optimal quantity.
type SessionPublic struct {
	SessionID       string           `json:"session_id"`
	Code            string           `json:"code"`
	Status          string           `json:"status"`
	WeekIndex       int              `json:"week_index"`
	RevealIndex     int              `json:"reveal_index"`
	Weeks           int              `json:"weeks"`
	DemandMu        float64          `json:"demand_mu"`
	DemandSigma     float64          `json:"demand_sigma"`
	Price           float64          `json:"price"`
	Cost            float64          `json:"cost"`
	Salvage         float64          `json:"salvage"`
	TrainingDemands []int            `json:"training_demands"`
	RevealedDemands []int            `json:"revealed_demands"`
	PlayersCount    int              `json:"players_count"`
	Leaderboard     []LeaderboardRow `json:"leaderboard"`
}

// SessionHostView adds host-only fields. The hidden demand series still
// never leaves the server.
type SessionHostView struct {
	SessionPublic
	OptimalQ   int  `json:"optimal_q"`
	DrawFailed bool `json:"draw_failed"`
}

type AnalyticsResponse struct {
	OptimalQ        int       `json:"optimal_q"`
	AvgOrders       []float64 `json:"avg_orders"`
	RevealedDemands []int     `json:"revealed_demands"`
}

// Domain records

type SessionRecord struct {
	ID              string
	Code            string
	Status          string
	WeekIndex       int
	RevealIndex     int
	Weeks           int
	DemandMu        float64
	DemandSigma     float64
	Price           float64
	Cost            float64
	Salvage         float64
	NTrain          int
	TrainingDemands []int
	RevealedDemands []int
	OptimalQ        int
	Leaderboard     []LeaderboardRow
	AvgOrders       []float64
	DrawFailed      bool
	PlayersCount    int
	CreatedAt       time.Time
}

// TotalDays is the number of demand days a full session plays.
func (s SessionRecord) TotalDays() int {
	return s.Weeks * 5
}

type PlayerRecord struct {
	ID               string
	SessionID        string
	Name             string
	Token            string // bearer secret, never serialized
	OrdersByWeek     []*int
	DailyProfit      []float64
	CumulativeProfit float64
	SubmittedWeek    *int
	JoinedAt         time.Time
	LastSeenAt       time.Time
	LastNudgedAt     *time.Time
}

type LeaderboardRow struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Profit   float64 `json:"profit"`
	AvgOrder float64 `json:"avg_order"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
