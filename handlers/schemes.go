package handlers

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/missionai/agrimesh/core"
)

// Scheme describes a government support scheme a farmer may apply for.
type Scheme struct {
	SchemeID     string   `json:"scheme_id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"` // "subsidy", "insurance", "loan", "training"
	Level        string   `json:"level"`    // "central" or "state"
	State        string   `json:"state"`
	Description  string   `json:"description"`
	Benefits     string   `json:"benefits"`
	MinLandAcres float64  `json:"min_land_acres"`
	MaxLandAcres float64  `json:"max_land_acres"` // 0 means no upper bound
	CropTypes    []string `json:"crop_types"`     // empty or "all" means any crop
	Documents    []string `json:"documents_required"`
	Helpline     string   `json:"helpline,omitempty"`
}

// schemeCatalog is the built-in catalog of supported schemes.
var schemeCatalog = []Scheme{
	{
		SchemeID:     "pm-kisan",
		Name:         "PM-KISAN Samman Nidhi",
		Category:     "subsidy",
		Level:        "central",
		State:        "All",
		Description:  "Income support of ₹6000 per year to landholding farmer families, paid in three installments.",
		Benefits:     "₹6000/year direct benefit transfer",
		MinLandAcres: 0.1,
		MaxLandAcres: 0,
		CropTypes:    []string{"all"},
		Documents:    []string{"Aadhaar card", "Land records", "Bank passbook"},
		Helpline:     "155261",
	},
	{
		SchemeID:     "pmfby",
		Name:         "Pradhan Mantri Fasal Bima Yojana",
		Category:     "insurance",
		Level:        "central",
		State:        "All",
		Description:  "Crop insurance against yield loss from natural calamities, pests and disease.",
		Benefits:     "Insured sum on crop loss at subsidised premium (2% kharif, 1.5% rabi)",
		MinLandAcres: 0,
		MaxLandAcres: 0,
		CropTypes:    []string{"all notified crops"},
		Documents:    []string{"Aadhaar card", "Land records", "Sowing declaration", "Bank passbook"},
	},
	{
		SchemeID:     "kcc",
		Name:         "Kisan Credit Card",
		Category:     "loan",
		Level:        "central",
		State:        "All",
		Description:  "Short-term credit for cultivation expenses at subsidised interest rates.",
		Benefits:     "Credit up to ₹3 lakh at 4% effective interest with prompt repayment",
		MinLandAcres: 0.5,
		MaxLandAcres: 0,
		CropTypes:    []string{"all"},
		Documents:    []string{"Aadhaar card", "Land records", "Passport photo"},
	},
	{
		SchemeID:     "raitha-siri",
		Name:         "Raitha Siri",
		Category:     "subsidy",
		Level:        "state",
		State:        "Karnataka",
		Description:  "Incentive of ₹10000 per hectare for millet growers in Karnataka.",
		Benefits:     "₹10000/hectare for millet cultivation",
		MinLandAcres: 0.5,
		MaxLandAcres: 12.5,
		CropTypes:    []string{"ragi", "jowar", "bajra", "millet"},
		Documents:    []string{"Aadhaar card", "Land records", "Crop declaration"},
	},
	{
		SchemeID:     "micro-irrigation",
		Name:         "Per Drop More Crop",
		Category:     "subsidy",
		Level:        "central",
		State:        "All",
		Description:  "Subsidy for drip and sprinkler irrigation installation, capped at five hectares.",
		Benefits:     "55% subsidy for small and marginal farmers on micro-irrigation systems",
		MinLandAcres: 0.25,
		MaxLandAcres: 12.5,
		CropTypes:    []string{"all"},
		Documents:    []string{"Aadhaar card", "Land records", "Quotation from supplier", "Bank passbook"},
	},
}

// ListSchemes returns catalog entries matching the optional category and
// state filters. Central schemes always match any state.
func ListSchemes(category, state string) []Scheme {
	var out []Scheme
	for _, s := range schemeCatalog {
		if category != "" && !strings.EqualFold(s.Category, category) {
			continue
		}
		if state != "" && s.Level == "state" && !strings.EqualFold(s.State, state) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// GetScheme returns the catalog entry with the given id.
func GetScheme(schemeID string) (Scheme, bool) {
	for _, s := range schemeCatalog {
		if s.SchemeID == schemeID {
			return s, true
		}
	}
	return Scheme{}, false
}

// EligibilityResult reports the outcome of checking a profile against one
// scheme's criteria. NearMiss is set when exactly one criterion failed, which
// is worth surfacing to the user as an almost-qualified scheme.
type EligibilityResult struct {
	SchemeID       string   `json:"scheme_id"`
	SchemeName     string   `json:"scheme_name"`
	Eligible       bool     `json:"eligible"`
	NearMiss       bool     `json:"near_miss"`
	Reasons        []string `json:"reasons"`
	FailedCriteria []string `json:"failed_criteria,omitempty"`
}

// CheckEligibility evaluates the profile against the scheme's land size and
// crop type criteria. A nil profile or missing farm leaves those criteria
// unchecked rather than failing them.
func CheckEligibility(scheme Scheme, profile *core.Profile) EligibilityResult {
	result := EligibilityResult{SchemeID: scheme.SchemeID, SchemeName: scheme.Name, Eligible: true}

	var farm *core.Farm
	if profile != nil {
		farm = profile.Farm
	}

	if farm != nil && farm.SizeAcres > 0 {
		maxLand := scheme.MaxLandAcres
		if maxLand == 0 {
			maxLand = math.Inf(1)
		}
		switch {
		case farm.SizeAcres < scheme.MinLandAcres:
			result.Eligible = false
			result.FailedCriteria = append(result.FailedCriteria,
				fmt.Sprintf("land size %.2f acres is below minimum %.2f acres", farm.SizeAcres, scheme.MinLandAcres))
		case farm.SizeAcres > maxLand:
			result.Eligible = false
			result.FailedCriteria = append(result.FailedCriteria,
				fmt.Sprintf("land size %.2f acres exceeds maximum %.2f acres", farm.SizeAcres, scheme.MaxLandAcres))
		default:
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("land size %.2f acres meets the requirement", farm.SizeAcres))
		}
	}

	if len(scheme.CropTypes) > 0 && !anyCropAllowed(scheme.CropTypes) {
		if farm != nil && len(farm.CurrentCrops) > 0 {
			if matched := matchingCrops(farm.CurrentCrops, scheme.CropTypes); len(matched) > 0 {
				result.Reasons = append(result.Reasons,
					"grows eligible crops: "+strings.Join(matched, ", "))
			} else {
				result.Eligible = false
				result.FailedCriteria = append(result.FailedCriteria,
					"does not grow required crops: "+strings.Join(scheme.CropTypes, ", "))
			}
		}
	} else if len(scheme.CropTypes) > 0 {
		result.Reasons = append(result.Reasons, "all crops are eligible for this scheme")
	}

	result.NearMiss = !result.Eligible && len(result.FailedCriteria) == 1
	return result
}

func anyCropAllowed(cropTypes []string) bool {
	for _, c := range cropTypes {
		switch strings.ToLower(c) {
		case "all", "all crops", "all notified crops", "all storable crops":
			return true
		}
	}
	return false
}

func matchingCrops(grown, required []string) []string {
	var matched []string
	for _, g := range grown {
		for _, r := range required {
			if strings.EqualFold(g, r) {
				matched = append(matched, strings.ToLower(g))
				break
			}
		}
	}
	return matched
}

// SchemesHandler guides farmers through government schemes: listing what is
// available, checking eligibility against their profile and pointing out
// schemes they almost qualify for.
type SchemesHandler struct{}

// NewSchemesHandler creates the schemes navigator handler.
func NewSchemesHandler() *SchemesHandler { return &SchemesHandler{} }

// Name returns the handler identifier.
func (h *SchemesHandler) Name() string { return core.HandlerSchemesNavigator }

// Process checks the user's profile against every scheme in the catalog and
// reports eligible schemes plus single-criterion near misses.
func (h *SchemesHandler) Process(_ context.Context, hc core.HandoffContext, message string) (core.Result, error) {
	state := ""
	if hc.Profile != nil && hc.Profile.Location != nil {
		state = hc.Profile.Location.State
	}

	category := categoryMentioned(message)
	schemes := ListSchemes(category, state)

	var eligible, nearMisses []EligibilityResult
	for _, s := range schemes {
		r := CheckEligibility(s, hc.Profile)
		if r.Eligible {
			eligible = append(eligible, r)
		} else if r.NearMiss {
			nearMisses = append(nearMisses, r)
		}
	}

	var b strings.Builder
	switch len(eligible) {
	case 0:
		b.WriteString("Based on your profile I could not confirm eligibility for any scheme yet.")
	case 1:
		fmt.Fprintf(&b, "You appear eligible for %s.", eligible[0].SchemeName)
	default:
		names := make([]string, len(eligible))
		for i, e := range eligible {
			names[i] = e.SchemeName
		}
		fmt.Fprintf(&b, "You appear eligible for %d schemes: %s.", len(eligible), strings.Join(names, ", "))
	}
	for _, nm := range nearMisses {
		fmt.Fprintf(&b, " You almost qualify for %s (%s).", nm.SchemeName, nm.FailedCriteria[0])
	}

	return core.Result{
		HandlerName: h.Name(),
		Message:     b.String(),
		Data: map[string]any{
			"eligible":    eligible,
			"near_misses": nearMisses,
			"checked":     len(schemes),
		},
	}, nil
}

func categoryMentioned(message string) string {
	lower := strings.ToLower(message)
	for _, c := range []string{"subsidy", "insurance", "loan", "training"} {
		if strings.Contains(lower, c) {
			return c
		}
	}
	return ""
}
