package intake

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ManualForm is the typed-in alternative to an audio recording
type ManualForm struct {
	ClientName     string `validate:"required"`
	OpposingParty  string
	CaseType       string `validate:"required"`
	SummaryOfFacts string `validate:"required"`
	// KeyDates is comma separated as typed
	KeyDates string
}

// Validate checks the required fields
func (f ManualForm) Validate() error {
	f.ClientName = strings.TrimSpace(f.ClientName)
	f.CaseType = strings.TrimSpace(f.CaseType)
	f.SummaryOfFacts = strings.TrimSpace(f.SummaryOfFacts)
	if err := validate.Struct(f); err != nil {
		var missing []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				missing = append(missing, fe.Field())
			}
			return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
		}
		return fmt.Errorf("invalid intake form: %w", err)
	}
	return nil
}

// Dates splits KeyDates on commas, dropping blanks
func (f ManualForm) Dates() []string {
	var out []string
	for _, d := range strings.Split(f.KeyDates, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Text is the free-text block sent to case intake
func (f ManualForm) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s\n", strings.TrimSpace(f.ClientName))
	fmt.Fprintf(&b, "Opposing Party: %s\n", strings.TrimSpace(f.OpposingParty))
	fmt.Fprintf(&b, "Case Type: %s\n", strings.TrimSpace(f.CaseType))
	fmt.Fprintf(&b, "Summary of Facts: %s\n", strings.TrimSpace(f.SummaryOfFacts))
	fmt.Fprintf(&b, "Key Dates: %s\n", strings.Join(f.Dates(), ", "))
	return b.String()
}
