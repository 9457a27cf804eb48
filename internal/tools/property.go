package tools

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const propertyResultLimit = 3

// Property is a normalized property listing record.
type Property struct {
	Address      string  `json:"address"`
	Price        float64 `json:"price"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	LivingArea   float64 `json:"living_area"`
	LotArea      float64 `json:"lot_area,omitempty"`
	LotAreaUnit  string  `json:"lot_area_unit,omitempty"`
	PropertyType string  `json:"property_type,omitempty"`
	Estimate     float64 `json:"estimate,omitempty"`
	RentEstimate float64 `json:"rent_estimate,omitempty"`
	DaysListed   int     `json:"days_listed"`
	Status       string  `json:"listing_status,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// PropertyResult is the normalized property search payload.
type PropertyResult struct {
	Properties []Property `json:"properties"`
	Message    string     `json:"message,omitempty"`
}

// searchProperties queries both property providers concurrently and keeps
// the first provider whose response parses to a non-empty list.
func (inv *Invoker) searchProperties(ctx context.Context, req *PropertySearchRequest) (*PropertyResult, error) {
	var (
		wg       sync.WaitGroup
		primary  []Property
		fallback []Property
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		props, err := inv.fetchProviderOne(ctx, req.Location, req.StatusType)
		if err != nil {
			inv.logger.Warn("primary property provider failed", zap.Error(err))
			return
		}
		primary = props
	}()
	go func() {
		defer wg.Done()
		props, err := inv.fetchProviderTwo(ctx, req.Location)
		if err != nil {
			inv.logger.Warn("secondary property provider failed", zap.Error(err))
			return
		}
		fallback = props
	}()
	wg.Wait()

	properties := primary
	if len(properties) == 0 {
		properties = fallback
	}
	if len(properties) > propertyResultLimit {
		properties = properties[:propertyResultLimit]
	}

	result := &PropertyResult{Properties: properties}
	if len(properties) == 0 {
		result.Message = "No listings available for the area"
	}
	return result, nil
}

type providerOneResponse struct {
	Props []map[string]any `json:"props"`
}

func (inv *Invoker) fetchProviderOne(ctx context.Context, location, statusType string) ([]Property, error) {
	query := url.Values{}
	query.Set("location", location)
	query.Set("status_type", statusType)
	query.Set("home_type", "Houses")
	query.Set("daysOn", "7")

	endpoint := inv.cfg.PropertyAPI1URL + "/propertyExtendedSearch?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-rapidapi-key", inv.cfg.PropertyAPI1Key)

	var parsed providerOneResponse
	if err := inv.getJSON(httpReq, &parsed); err != nil {
		return nil, err
	}

	properties := make([]Property, 0, len(parsed.Props))
	for _, prop := range parsed.Props {
		properties = append(properties, Property{
			Address:      cleanAddress(asString(prop["address"])),
			Price:        asFloat(prop["price"]),
			Bedrooms:     asInt(prop["bedrooms"]),
			Bathrooms:    asFloat(prop["bathrooms"]),
			LivingArea:   asFloat(prop["livingArea"]),
			LotArea:      asFloat(prop["lotAreaValue"]),
			LotAreaUnit:  asString(prop["lotAreaUnit"]),
			PropertyType: asString(prop["propertyType"]),
			Estimate:     asFloat(prop["zestimate"]),
			RentEstimate: asFloat(prop["rentZestimate"]),
			DaysListed:   asInt(prop["daysOnZillow"]),
			Status:       asString(prop["listingStatus"]),
			Latitude:     asFloat(prop["latitude"]),
			Longitude:    asFloat(prop["longitude"]),
		})
	}
	return properties, nil
}

type providerTwoResponse struct {
	Results []map[string]any `json:"results"`
}

func (inv *Invoker) fetchProviderTwo(ctx context.Context, location string) ([]Property, error) {
	query := url.Values{}
	query.Set("location", location)
	query.Set("status", "forSale")
	query.Set("listing_type", "by_agent")
	query.Set("sortSelection", "priorityscore")
	query.Set("output", "json")
	query.Set("doz", "any")

	endpoint := inv.cfg.PropertyAPI2URL + "/search?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-rapidapi-key", inv.cfg.PropertyAPI2Key)

	var parsed providerTwoResponse
	if err := inv.getJSON(httpReq, &parsed); err != nil {
		return nil, err
	}

	properties := make([]Property, 0, len(parsed.Results))
	for _, prop := range parsed.Results {
		properties = append(properties, Property{
			Address:      cleanAddress(asString(prop["streetAddress"])),
			Price:        asFloat(prop["price"]),
			Bedrooms:     asInt(prop["bedrooms"]),
			Bathrooms:    asFloat(prop["bathrooms"]),
			LivingArea:   asFloat(prop["livingArea"]),
			PropertyType: asString(prop["homeType"]),
			Estimate:     asFloat(prop["zestimate"]),
			RentEstimate: asFloat(prop["rentZestimate"]),
			DaysListed:   asInt(prop["daysOnZillow"]),
			Latitude:     asFloat(prop["latitude"]),
			Longitude:    asFloat(prop["longitude"]),
		})
	}
	return properties, nil
}

// cleanAddress drops bare street numbers so spoken results stay natural.
func cleanAddress(address string) string {
	parts := strings.Fields(address)
	kept := parts[:0]
	for _, part := range parts {
		if _, err := strconv.Atoi(part); err == nil {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, " ")
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asInt(v any) int {
	return int(asFloat(v))
}
