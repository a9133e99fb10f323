package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
)

// ErrNoMatch is returned when the provider cannot place the address.
var ErrNoMatch = application.ErrNoGeocodeMatch

const mapQuestEndpoint = "https://www.mapquestapi.com/geocoding/v1/address"

// MapQuest resolves free-form addresses through the MapQuest geocoding API.
type MapQuest struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
}

func NewMapQuest(apiKey string) *MapQuest {
	return &MapQuest{
		APIKey:   apiKey,
		Endpoint: mapQuestEndpoint,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"` // city
			AdminArea3 string `json:"adminArea3"` // state
			AdminArea1 string `json:"adminArea1"` // country
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

var _ application.Geocoder = (*MapQuest)(nil)

// Geocode returns the first match for address as a GeoJSON point.
func (m *MapQuest) Geocode(ctx context.Context, address string) (entity.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return entity.Location{}, fmt.Errorf("empty address")
	}
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	endpoint := m.Endpoint
	if endpoint == "" {
		endpoint = mapQuestEndpoint
	}

	params := url.Values{"key": {m.APIKey}, "location": {address}, "maxResults": {"1"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return entity.Location{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return entity.Location{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return entity.Location{}, fmt.Errorf("geocoder: unexpected status %d", resp.StatusCode)
	}

	var body mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return entity.Location{}, err
	}
	if body.Info.StatusCode != 0 {
		return entity.Location{}, fmt.Errorf("geocoder: %s", strings.Join(body.Info.Messages, "; "))
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return entity.Location{}, ErrNoMatch
	}

	hit := body.Results[0].Locations[0]
	loc := entity.NewPoint(hit.LatLng.Lng, hit.LatLng.Lat)
	loc.Street = hit.Street
	loc.City = hit.AdminArea5
	loc.State = hit.AdminArea3
	loc.Zipcode = hit.PostalCode
	loc.Country = hit.AdminArea1
	loc.FormattedAddress = formatAddress(hit.Street, hit.AdminArea5, hit.AdminArea3+" "+hit.PostalCode, hit.AdminArea1)
	return loc, nil
}

func formatAddress(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}
