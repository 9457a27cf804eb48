package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const placesResultLimit = 5

type placesResponse struct {
	Results []placeResult `json:"results"`
}

type placeResult struct {
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int    `json:"user_ratings_total"`
	OpeningHours     *struct {
		OpenNow bool `json:"open_now"`
	} `json:"opening_hours"`
	Types []string `json:"types"`
}

// findPlaces queries the places backend and formats the top results as
// speakable descriptions.
func (inv *Invoker) findPlaces(ctx context.Context, req *PlacesSearchRequest) ([]string, error) {
	endpoint := inv.cfg.PlacesAPIURL + "/maps/api/place/textsearch/json"

	query := url.Values{}
	query.Set("query", fmt.Sprintf("%s in %s", req.QueryType, req.Location))
	query.Set("opennow", "true")
	query.Set("language", "en")
	query.Set("region", "en")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-rapidapi-key", inv.cfg.PlacesAPIKey)

	var parsed placesResponse
	if err := inv.getJSON(httpReq, &parsed); err != nil {
		return nil, fmt.Errorf("places search: %w", err)
	}

	if len(parsed.Results) == 0 {
		return []string{"Sorry, no places found or there was an error with the search."}, nil
	}

	results := parsed.Results
	if len(results) > placesResultLimit {
		results = results[:placesResultLimit]
	}

	formatted := make([]string, 0, len(results))
	for _, place := range results {
		formatted = append(formatted, formatPlace(place))
	}
	return formatted, nil
}

func formatPlace(place placeResult) string {
	status := "Status unknown"
	if place.OpeningHours != nil {
		if place.OpeningHours.OpenNow {
			status = "Open"
		} else {
			status = "Closed"
		}
	}

	types := make([]string, 0, len(place.Types))
	for _, t := range place.Types {
		if t == "point_of_interest" || t == "establishment" {
			continue
		}
		types = append(types, t)
	}

	return fmt.Sprintf("%s\n%s\n%.1f stars (%d reviews)\nStatus: %s\nType: %s",
		place.Name,
		place.FormattedAddress,
		place.Rating,
		place.UserRatingsTotal,
		status,
		strings.Join(types, ", "),
	)
}
