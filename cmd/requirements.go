package cmd

import (
	"fmt"
	"sort"
	"strings"
)

// Requirement is one document the office expects for a transaction type,
// uploaded as a jpg or png image.
type Requirement struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var transactionRequirements = map[string][]Requirement{
	"Non-Professional Driver License Application": {
		{Key: "apl_form", Label: "Application for Permits and License (APL) Form"},
		{Key: "medical_certificate", Label: "Medical Certificate"},
		{Key: "pdc", Label: "Practical Driving Course (PDC)"},
		{Key: "student_permit", Label: "Valid Student Permit"},
		{Key: "psa_birth_certificate", Label: "PSA Birth Certificate"},
	},
	"Professional Driver License Application": {
		{Key: "apl_form", Label: "Application for Permits and License (APL) Form"},
		{Key: "medical_certificate", Label: "Medical Certificate"},
		{Key: "pdc", Label: "Practical Driving Course (PDC)"},
		{Key: "non_pro_license", Label: "Valid Non-Professional License"},
		{Key: "psa_birth_certificate", Label: "PSA Birth Certificate"},
	},
	"Adding Restriction": {
		{Key: "apl_form", Label: "Application for Permits and License (APL) Form"},
		{Key: "medical_certificate", Label: "Medical Certificate"},
		{Key: "drivers_license", Label: "Valid Driver's License"},
	},
}

func transactionTypes() []string {
	types := make([]string, 0, len(transactionRequirements))
	for name := range transactionRequirements {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// resolveTransaction matches a transaction name case-insensitively, so flags
// do not need the exact capitalisation.
func resolveTransaction(input string) (string, []Requirement, error) {
	for name, reqs := range transactionRequirements {
		if strings.EqualFold(name, input) {
			return name, reqs, nil
		}
	}
	return "", nil, fmt.Errorf("unknown transaction %q. Available: %s", input, strings.Join(transactionTypes(), "; "))
}
