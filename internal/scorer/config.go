// Package scorer computes the data quality and lead priority scores of
// business records from configurable weight tables.
package scorer

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
)

// QualityWeightSum returns the score of a record carrying every signal.
func QualityWeightSum(w config.QualityWeights) int {
	return w.Base + w.Phone + w.Email + w.Website + w.FullAddress + w.Rating +
		w.Reviews + w.Coordinates + w.Hours + w.ContactPerson +
		w.AdditionalEmail + w.Social + w.Description
}

// ValidateQualityWeights checks that a quality weight table is usable.
func ValidateQualityWeights(w config.QualityWeights) error {
	var errs []string

	weights := map[string]int{
		"base":             w.Base,
		"phone":            w.Phone,
		"email":            w.Email,
		"website":          w.Website,
		"full_address":     w.FullAddress,
		"rating":           w.Rating,
		"reviews":          w.Reviews,
		"coordinates":      w.Coordinates,
		"hours":            w.Hours,
		"contact_person":   w.ContactPerson,
		"additional_email": w.AdditionalEmail,
		"social":           w.Social,
		"description":      w.Description,
	}
	for name, v := range weights {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}
	if QualityWeightSum(w) <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: quality weights invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateLeadWeights checks that a lead weight table is internally
// consistent.
func ValidateLeadWeights(w config.LeadWeights) error {
	var errs []string

	if w.QualityFactor < 0 || w.QualityFactor > 1 {
		errs = append(errs, "quality_factor must be between 0 and 1")
	}
	if w.CategoryMatch < 0 {
		errs = append(errs, "category_match must be >= 0")
	}
	for table, m := range map[string]map[string]int{
		"digital_maturity": w.DigitalMaturity,
		"security":         w.Security,
		"business_size":    w.BusinessSize,
	} {
		for k, v := range m {
			if v < 0 {
				errs = append(errs, fmt.Sprintf("%s.%s must be >= 0", table, k))
			}
		}
	}
	if w.Reputation.Points < 0 {
		errs = append(errs, "reputation.points must be >= 0")
	}
	if w.Thresholds.Medium <= 0 || w.Thresholds.High > 100 || w.Thresholds.Medium >= w.Thresholds.High {
		errs = append(errs, "thresholds must satisfy 0 < medium < high <= 100")
	}
	for _, lvl := range w.UrgentSecurity {
		switch lvl {
		case model.SecurityMissing, model.SecurityLow, model.SecurityBasic, model.SecurityGood:
		default:
			errs = append(errs, fmt.Sprintf("urgent_security: unknown level %q", lvl))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: lead weights invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadLeadWeights reads a lead weight table from a YAML file with a
// top-level "lead" key. Keys missing from the file keep their defaults.
func LoadLeadWeights(path string) (config.LeadWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.LeadWeights{}, eris.Wrapf(err, "scorer: read lead weights %s", path)
	}

	wrapper := struct {
		Lead config.LeadWeights `yaml:"lead"`
	}{Lead: config.DefaultLeadWeights()}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return config.LeadWeights{}, eris.Wrap(err, "scorer: parse lead weights")
	}

	if err := ValidateLeadWeights(wrapper.Lead); err != nil {
		return config.LeadWeights{}, err
	}
	return wrapper.Lead, nil
}
