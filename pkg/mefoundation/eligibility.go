package mefoundation

// Verdict classifies a wallet link response
type Verdict int

const (
	// Indeterminate means the response did not carry a verdict at all
	Indeterminate Verdict = iota
	NotEligible
	Eligible
)

const eligibleStatus = "eligible"

func (v Verdict) String() string {
	switch v {
	case Eligible:
		return "eligible"
	case NotEligible:
		return "not-eligible"
	default:
		return "indeterminate"
	}
}

// Eligibility reads [0].result.data.json.eligibility.eligibility.
// Any missing step yields Indeterminate.
func Eligibility(resp LinkResponse) Verdict {
	status, ok := eligibilityStatus(resp)
	switch {
	case !ok:
		return Indeterminate
	case status == eligibleStatus:
		return Eligible
	default:
		return NotEligible
	}
}

func eligibilityStatus(resp LinkResponse) (string, bool) {
	if len(resp) == 0 || resp[0] == nil {
		return "", false
	}
	result := resp[0].Result
	if result == nil || result.Data == nil || result.Data.JSON == nil {
		return "", false
	}
	field := result.Data.JSON.Eligibility
	if field == nil || field.Eligibility == nil {
		return "", false
	}
	return *field.Eligibility, true
}
