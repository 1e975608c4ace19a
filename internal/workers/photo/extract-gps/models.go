// internal/workers/photo/extract-gps/models.go
package extractgps

import "listing-photos/internal/models"

type Input struct {
	Filename string
	Data     []byte
}

type Output struct {
	Result Result
}

// Result carries the coordinate when Status is found, and the cause when
// Status is failed.
type Result struct {
	Coordinate *models.GeoCoordinate
	Status     models.StepStatus
	Reason     error
}
