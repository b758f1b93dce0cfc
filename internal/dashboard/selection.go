package dashboard

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"loanlens/domain/loan"
	"loanlens/internal/errors"
)

// DefaultCondition is selected when a request names none
const DefaultCondition = loan.ConditionGood

// Selection is the user-controlled input of the distribution section
type Selection struct {
	Condition string `validate:"required,oneof='Good Loan' 'Bad Loan'"`
}

var validate = validator.New()

// ParseCondition resolves the raw condition query value. Empty selects
// DefaultCondition; matching ignores case; anything else is INVALID_INPUT.
func ParseCondition(raw string) (loan.Condition, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultCondition, nil
	}

	sel := Selection{Condition: raw}
	if c, err := loan.ParseCondition(raw); err == nil {
		sel.Condition = string(c)
	}

	if err := validate.Struct(sel); err != nil {
		return "", errors.InvalidInput(fmt.Sprintf("unknown loan condition %q: choose one of %s",
			raw, optionList()))
	}
	return loan.Condition(sel.Condition), nil
}

func optionList() string {
	names := make([]string, len(loan.Conditions))
	for i, c := range loan.Conditions {
		names[i] = fmt.Sprintf("%q", string(c))
	}
	return strings.Join(names, ", ")
}
