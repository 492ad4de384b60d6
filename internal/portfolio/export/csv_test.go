package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/models"
)

func TestTesters_HeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	testers := []models.Tester{
		{UID: "u1", Email: "a@example.com", DisplayName: "A", JoinedAt: "2024-05-01T00:00:00Z"},
		{UID: "u2", Email: "b@example.com", DisplayName: "B, junior", JoinedAt: "2024-05-02T00:00:00Z"},
	}

	require.NoError(t, Testers(&buf, testers))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "uid,email,display_name,joined_at,play_store_email,app_id", lines[0])
	assert.Contains(t, lines[1], "a@example.com")
	assert.Contains(t, lines[2], `"B, junior"`, "fields containing commas are quoted")
}

func TestSubscribers_EmptyListStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Subscribers(&buf, nil))
	assert.Equal(t, "uid,email,joined_at", strings.TrimSpace(buf.String()))
}
