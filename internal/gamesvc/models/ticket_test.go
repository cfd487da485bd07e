package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketJSON_EmptyCellsAreNull(t *testing.T) {
	data, err := json.Marshal(sample)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		[1,null,21,null,41,null,61,null,81],
		[null,12,null,32,null,52,null,72,82],
		[3,null,23,33,null,53,null,73,null]
	]`, string(data))

	var back Ticket
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, sample, back)
}

func TestTicketJSON_InsidePayload(t *testing.T) {
	data, err := json.Marshal(struct {
		Tickets []Ticket `json:"tickets"`
	}{Tickets: []Ticket{sample}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tickets":[[[1,null,21`)
}
