package broker

import (
	"encoding/json"
	"testing"

	"github.com/avvvet/tambola-services/internal/comm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay_DeliversToEveryTarget(t *testing.T) {
	got := map[string][]byte{}
	b := NewBroker(nil, func(id string, payload []byte) bool {
		got[id] = payload
		return id != "gone"
	})

	data, err := json.Marshal(comm.WSMessage{
		Type:    comm.EventNumberDrawn,
		Data:    json.RawMessage(`{"number":42}`),
		Targets: []string{"a", "b", "gone"},
	})
	require.NoError(t, err)
	b.Relay(data)

	require.Len(t, got, 3)
	var msg comm.WSMessage
	require.NoError(t, json.Unmarshal(got["a"], &msg))
	assert.Equal(t, comm.EventNumberDrawn, msg.Type)
	assert.JSONEq(t, `{"number":42}`, string(msg.Data))
	assert.Empty(t, msg.Targets)
	assert.Equal(t, got["a"], got["b"])
}

func TestRelay_IgnoresUntargetedAndMalformed(t *testing.T) {
	calls := 0
	b := NewBroker(nil, func(string, []byte) bool { calls++; return true })

	b.Relay([]byte(`{"type":"number_drawn"}`))
	b.Relay([]byte(`not json`))

	assert.Zero(t, calls)
}
