// internal/workers/photo/classify-text/models.go
package classifytext

import (
	"regexp"

	"listing-photos/internal/models"
)

type Input struct {
	Texts []string `json:"texts"`
}

type Output struct {
	Signals models.ClassifiedSignals `json:"signals"`
}

// Rules is the compiled form of Config. Tokens are lower-case.
type Rules struct {
	SaleTokens []string
	RentTokens []string
	Phone      *regexp.Regexp
}
