// Package prize splits ticket revenue into per-category prize amounts.
package prize

import (
	"github.com/avvvet/tambola-services/internal/gamesvc/models"
	"github.com/shopspring/decimal"
)

// Share of revenue per category, in percent. Five percent is always kept
// back as host commission; with early 5 off its share moves to the house.
const (
	LinePercent          = 15
	CornersPercent       = 10
	HousePercent         = 35
	HouseNoEarly5Percent = 40
	Early5Percent        = 5
	CommissionPercent    = 5
)

var hundred = decimal.NewFromInt(100)

// Compute returns the prize table for the given sales.
func Compute(ticketsSold int, pricePerTicket int64, opts models.Options) models.Prizes {
	revenue := Revenue(ticketsSold, pricePerTicket)

	p := models.Prizes{
		TopLine:    share(revenue, LinePercent),
		MiddleLine: share(revenue, LinePercent),
		BottomLine: share(revenue, LinePercent),
		Corners:    share(revenue, CornersPercent),
	}
	if opts.EnableEarly5 {
		p.House = share(revenue, HousePercent)
		p.Early5 = share(revenue, Early5Percent)
	} else {
		p.House = share(revenue, HouseNoEarly5Percent)
	}
	return p
}

func Revenue(ticketsSold int, pricePerTicket int64) decimal.Decimal {
	if ticketsSold <= 0 || pricePerTicket <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(ticketsSold)).Mul(decimal.NewFromInt(pricePerTicket))
}

// HousePayout is what the full house winner at position (1-based) receives:
// base * (reductionPercent/100)^(position-1), floored.
func HousePayout(base int64, reductionPercent, position int) int64 {
	if position < 1 || base <= 0 {
		return 0
	}
	factor := decimal.NewFromInt(int64(reductionPercent)).Div(hundred)
	return decimal.NewFromInt(base).
		Mul(factor.Pow(decimal.NewFromInt(int64(position - 1)))).
		Floor().
		IntPart()
}

func share(revenue decimal.Decimal, percent int64) int64 {
	return revenue.Mul(decimal.NewFromInt(percent)).Div(hundred).Floor().IntPart()
}
