package models

// Options are the per-room feature toggles chosen at creation time.
type Options struct {
	EnableEarly5          bool `json:"enableEarly5"`
	EnableMultipleHouses  bool `json:"enableMultipleHouses"`
	MaxHouseWinners       int  `json:"maxHouseWinners"`
	HouseReductionPercent int  `json:"houseReductionPercent"` // payout of winner k is base * (pct/100)^(k-1)
	EnableBogey           bool `json:"enableBogey"`
	BogeyPenaltySeconds   int  `json:"bogeyPenaltySeconds"`
	AutoDrawInterval      int  `json:"autoDrawInterval"` // seconds between draws
}

const (
	DefaultMaxHouseWinners       = 3
	DefaultHouseReductionPercent = 50
	DefaultBogeyPenaltySeconds   = 30
	DefaultAutoDrawInterval      = 5

	MinAutoDrawInterval = 1
	MaxAutoDrawInterval = 60
)

// Normalize fills defaults and clamps values into their accepted ranges.
func (o Options) Normalize() Options {
	if !o.EnableMultipleHouses {
		o.MaxHouseWinners = 1
	} else if o.MaxHouseWinners < 1 {
		o.MaxHouseWinners = DefaultMaxHouseWinners
	} else if o.MaxHouseWinners > 10 {
		o.MaxHouseWinners = 10
	}

	if o.HouseReductionPercent <= 0 || o.HouseReductionPercent > 100 {
		o.HouseReductionPercent = DefaultHouseReductionPercent
	}

	if o.BogeyPenaltySeconds <= 0 {
		o.BogeyPenaltySeconds = DefaultBogeyPenaltySeconds
	}

	switch {
	case o.AutoDrawInterval == 0:
		o.AutoDrawInterval = DefaultAutoDrawInterval
	case o.AutoDrawInterval < MinAutoDrawInterval:
		o.AutoDrawInterval = MinAutoDrawInterval
	case o.AutoDrawInterval > MaxAutoDrawInterval:
		o.AutoDrawInterval = MaxAutoDrawInterval
	}
	return o
}

// HouseCapacity is the number of full house prizes on offer.
func (o Options) HouseCapacity() int {
	if !o.EnableMultipleHouses {
		return 1
	}
	return o.MaxHouseWinners
}
