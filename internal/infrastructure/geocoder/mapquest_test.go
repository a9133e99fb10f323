package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapQuestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "02118", r.URL.Query().Get("location"))
		_, _ = w.Write([]byte(`{
			"info": {"statuscode": 0},
			"results": [{"locations": [{
				"street": "233 Bay State Rd", "adminArea5": "Boston", "adminArea3": "MA",
				"adminArea1": "US", "postalCode": "02215",
				"latLng": {"lat": 42.350846, "lng": -71.104028}
			}]}]
		}`))
	}))
	defer srv.Close()

	g := NewMapQuest("secret")
	g.Endpoint = srv.URL

	loc, err := g.Geocode(context.Background(), "02118")
	require.NoError(t, err)
	assert.Equal(t, "Point", loc.Type)
	assert.Equal(t, []float64{-71.104028, 42.350846}, loc.Coordinates)
	assert.Equal(t, "Boston", loc.City)
	assert.Equal(t, "MA", loc.State)
	assert.Equal(t, "02215", loc.Zipcode)
	assert.Equal(t, "233 Bay State Rd, Boston, MA 02215, US", loc.FormattedAddress)
}

func TestMapQuestNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"info": {"statuscode": 0}, "results": [{"locations": []}]}`))
	}))
	defer srv.Close()

	g := &MapQuest{APIKey: "k", Endpoint: srv.URL}
	_, err := g.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestMapQuestProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"info": {"statuscode": 403, "messages": ["bad key"]}}`))
	}))
	defer srv.Close()

	g := &MapQuest{APIKey: "k", Endpoint: srv.URL}
	_, err := g.Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")

	_, err = g.Geocode(context.Background(), "  ")
	assert.Error(t, err)
}
