package ticket

import (
	"testing"

	"github.com/avvvet/tambola-services/internal/gamesvc/models"
	"github.com/stretchr/testify/assert"
)

func validTicket() models.Ticket {
	return models.Ticket{
		{1, 0, 21, 0, 41, 0, 61, 0, 81},
		{0, 12, 0, 32, 0, 52, 0, 72, 82},
		{3, 0, 23, 33, 0, 53, 0, 73, 0},
	}
}

func TestValidate_Accepts(t *testing.T) {
	assert.NoError(t, Validate(validTicket()))
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(tk *models.Ticket){
		"short row":       func(tk *models.Ticket) { tk[0][8] = 0 },
		"wrong decade":    func(tk *models.Ticket) { tk[0][2] = 31 },
		"not ascending":   func(tk *models.Ticket) { tk[0][0], tk[2][0] = 3, 1 },
		"empty column":    func(tk *models.Ticket) { tk[1][1] = 0; tk[1][6] = 62 },
		"duplicate value": func(tk *models.Ticket) { tk[2][0] = 1 },
	}
	for name, mutate := range cases {
		tk := validTicket()
		mutate(&tk)
		assert.Error(t, Validate(tk), name)
	}
}

func TestValidateBatch_RejectsSharedNumbers(t *testing.T) {
	tk := validTicket()
	err := ValidateBatch([]models.Ticket{tk, tk})
	assert.Error(t, err)
}
