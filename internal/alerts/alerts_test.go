package alerts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienbuster/alienbuster-go/internal/conf"
	"github.com/alienbuster/alienbuster-go/internal/datastore"
)

func testReport(risk float64) *datastore.Report {
	return &datastore.Report{
		ID:                42,
		Species:           "giant hogweed",
		Latitude:          60.1699,
		Longitude:         24.9384,
		FusedRisk:         risk,
		RecommendedAction: "Immediate Verification & Containment Alert",
	}
}

func TestPreview(t *testing.T) {
	settings := conf.AlertSettings{
		Threshold:  0.80,
		Recipients: []string{"invasives@agency.example.org"},
	}
	s := NewService(settings)

	t.Run("renders above threshold", func(t *testing.T) {
		msg, ok, err := s.Preview(testReport(0.92))
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, "[ALIENBUSTER ALERT] High-risk report: giant hogweed", msg.Subject)
		assert.Equal(t, settings.Recipients, msg.Recipients)
		assert.True(t, strings.Contains(msg.Body, "giant hogweed"))
		assert.True(t, strings.Contains(msg.Body, "0.92"))
		assert.True(t, strings.Contains(msg.Body, "60.1699, 24.9384"))
		assert.True(t, strings.Contains(msg.Body, "report #42"))
	})

	t.Run("threshold boundary qualifies", func(t *testing.T) {
		_, ok, err := s.Preview(testReport(0.80))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("below threshold yields no alert", func(t *testing.T) {
		_, ok, err := s.Preview(testReport(0.79))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPlaybook(t *testing.T) {
	assert.True(t, strings.Contains(Playbook("plant"), "Invasive Plant Outbreak"))
	assert.True(t, strings.Contains(Playbook("insect"), "pheromone traps"))
	assert.True(t, strings.Contains(Playbook("aquatic"), "Clean, Drain, Dry"))
	assert.True(t, strings.Contains(Playbook("Insect"), "pheromone traps"))

	// Unknown kinds fall back to the plant protocol
	assert.Equal(t, Playbook("plant"), Playbook("fungus"))
}
