// internal/workers/photo/reverse-geocode/models.go
package reversegeocode

import "listing-photos/internal/models"

type Input struct {
	Coordinate models.GeoCoordinate
}

type Output struct {
	Result Result
}

// Result carries the address when Status is found, and the cause when
// Status is failed.
type Result struct {
	Address *string
	Status  models.StepStatus
	Reason  error
	Cached  bool
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}
