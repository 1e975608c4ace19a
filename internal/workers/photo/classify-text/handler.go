// internal/workers/photo/classify-text/handler.go
package classifytext

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"listing-photos/internal/common/logger"
	"listing-photos/internal/models"
)

const (
	TaskType = "classify-text"
)

var (
	ErrInvalidPhonePattern = errors.New("INVALID_PHONE_PATTERN")
)

type Handler struct {
	config *Config
	rules  *Rules
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	rules, err := NewRules(config)
	if err != nil {
		return nil, err
	}
	return &Handler{
		config: config,
		rules:  rules,
		logger: log.WithFields(map[string]interface{}{"stage": TaskType}),
	}, nil
}

// NewRules compiles the phone pattern and lower-cases the status tokens.
func NewRules(config *Config) (*Rules, error) {
	phone, err := regexp.Compile(config.PhonePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhonePattern, err)
	}
	return &Rules{
		SaleTokens: lowerAll(config.SaleTokens),
		RentTokens: lowerAll(config.RentTokens),
		Phone:      phone,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	signals := Classify(input.Texts, h.rules)

	fields := map[string]interface{}{
		"textCount":  len(input.Texts),
		"status":     signals.StatusTags,
		"phoneCount": len(signals.PhoneNumbers),
	}
	if signals.HouseNumber != nil {
		fields["houseNumber"] = *signals.HouseNumber
	}
	h.logger.Debug("text classified", fields)

	return &Output{Signals: signals}, nil
}

// Classify derives status tags, house number and phone numbers from texts.
// It has no side effects; equal inputs give equal outputs.
func Classify(texts []string, rules *Rules) models.ClassifiedSignals {
	signals := models.ClassifiedSignals{
		StatusTags:   []models.StatusTag{},
		PhoneNumbers: []string{},
	}

	if anyContains(texts, rules.SaleTokens) {
		signals.StatusTags = append(signals.StatusTags, models.StatusForSale)
	}
	if anyContains(texts, rules.RentTokens) {
		signals.StatusTags = append(signals.StatusTags, models.StatusForRent)
	}

	// first digit-only token in detector order
	for _, t := range texts {
		if isHouseNumber(t) {
			n, _ := strconv.Atoi(t)
			signals.HouseNumber = &n
			break
		}
	}

	seen := make(map[string]struct{})
	for _, t := range texts {
		for _, m := range rules.Phone.FindAllString(t, -1) {
			if m == "" {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			signals.PhoneNumbers = append(signals.PhoneNumbers, m)
		}
	}
	sort.Strings(signals.PhoneNumbers)

	return signals
}

func anyContains(texts, tokens []string) bool {
	for _, t := range texts {
		lower := strings.ToLower(t)
		for _, tok := range tokens {
			if tok != "" && strings.Contains(lower, tok) {
				return true
			}
		}
	}
	return false
}

func isHouseNumber(s string) bool {
	if len(s) < 1 || len(s) > 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
