package assistant

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go-crm-assistant/internal/common/daterange"
)

const maxConfidence = 0.95

type Classifier struct {
	intents []IntentDefinition
	clock   func() time.Time
}

// NewClassifier builds a classifier over intents, evaluated in slice order.
// A nil table uses DefaultIntents.
func NewClassifier(intents []IntentDefinition) *Classifier {
	if intents == nil {
		intents = DefaultIntents()
	}
	return &Classifier{intents: intents, clock: time.Now}
}

// WithClock sets the time source used to resolve periods
func (c *Classifier) WithClock(clock func() time.Time) *Classifier {
	c.clock = clock
	return c
}

func (c *Classifier) Intents() []IntentDefinition {
	return c.intents
}

// Parse classifies a single utterance. It returns nil when the input is
// blank or no pattern matches.
func (c *Classifier) Parse(input string) *Command {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return nil
	}

	for _, def := range c.intents {
		for _, pat := range def.Patterns {
			loc := pat.Pattern.FindStringSubmatchIndex(normalized)
			if loc == nil {
				continue
			}
			cmd := &Command{
				Intent:     def.Intent,
				Action:     def.Action,
				Entities:   extractEntities(normalized, loc, pat.Groups),
				Confidence: confidence(loc[1]-loc[0], len(normalized)),
			}
			c.deriveParameters(def, cmd)
			return cmd
		}
	}
	return nil
}

func extractEntities(input string, loc []int, groups []entityField) Entities {
	var e Entities
	for i, field := range groups {
		if 2*(i+1)+1 >= len(loc) {
			break
		}
		start, end := loc[2*(i+1)], loc[2*(i+1)+1]
		if start < 0 {
			continue
		}
		value := strings.TrimSpace(input[start:end])
		if value == "" {
			continue
		}
		switch field {
		case productName:
			e.ProductName = value
		case quantity:
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				e.Quantity = &n
			}
		case searchTerm:
			e.SearchTerm = value
		case period:
			e.Period = value
		}
	}
	return e
}

func confidence(matched, total int) float64 {
	return math.Min(maxConfidence, float64(matched)/float64(total)+0.3)
}

func (c *Classifier) deriveParameters(def IntentDefinition, cmd *Command) {
	if def.DefaultQuantity != nil && cmd.Entities.Quantity == nil {
		cmd.Entities.Quantity = intPtr(*def.DefaultQuantity)
	}
	if !def.Dated {
		return
	}
	if cmd.Entities.Period == "" {
		cmd.Entities.Period = daterange.Today
	}
	if r, ok := daterange.Resolve(cmd.Entities.Period, c.clock()); ok {
		cmd.Parameters.DateRange = &r
	}
}
