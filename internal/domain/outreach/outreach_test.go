package outreach

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTour_Lifecycle(t *testing.T) {
	lead, err := NewLead("Sam Rivera", "sam@example.com")
	require.NoError(t, err)
	tour := NewTour(lead.ID, time.Now())
	tour.Lead = lead
	assert.Equal(t, "Tour for Sam Rivera (scheduled)", tour.String())

	assert.Error(t, tour.Complete("", time.Now()))
	require.NoError(t, tour.Claim(uuid.New(), time.Now()))
	require.NoError(t, tour.Complete("Loved the wood shop", time.Now()))
	assert.Equal(t, TourStatusCompleted, tour.Status)
	assert.Equal(t, LeadStatusToured, lead.Status)
	assert.Equal(t, "Tour for Sam Rivera (completed)", tour.String())
}

func TestTour_CompleteKeepsConvertedLead(t *testing.T) {
	lead, _ := NewLead("Kim", "")
	lead.Status = LeadStatusConverted
	tour := NewTour(lead.ID, time.Now())
	tour.Lead = lead
	require.NoError(t, tour.Claim(uuid.New(), time.Now()))
	require.NoError(t, tour.Complete("", time.Now()))
	assert.Equal(t, LeadStatusConverted, lead.Status)
}

func TestBuyable(t *testing.T) {
	b, err := NewBuyable("Sticker Pack", decimal.RequireFromString("4.5"))
	require.NoError(t, err)
	assert.Equal(t, "$4.50", b.FormattedPrice())

	p, err := NewBuyablePurchase(b.ID, uuid.New(), 3)
	require.NoError(t, err)
	assert.Equal(t, "13.50", p.TotalCost(b.UnitPrice).StringFixed(2))

	_, err = NewBuyablePurchase(b.ID, uuid.New(), 0)
	assert.Error(t, err)
	_, err = NewBuyable("", decimal.Zero)
	assert.Error(t, err)
	_, err = NewLead(" ", "")
	assert.Error(t, err)
}
