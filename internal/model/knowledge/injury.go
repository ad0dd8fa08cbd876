package knowledge

// Severity tiers used by the corpus.
const (
	SeverityMinor     = "minor"
	SeverityModerate  = "moderate"
	SeveritySerious   = "serious"
	SeverityEmergency = "emergency"
)

// FirstAidStep is one numbered instruction in an injury's treatment sequence.
type FirstAidStep struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
}

// Injury is a single knowledge-corpus entry. Immutable after load.
type Injury struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Keywords          []string       `json:"keywords"`
	Severity          string         `json:"severity"`
	Symptoms          []string       `json:"symptoms"`
	FirstAidSteps     []FirstAidStep `json:"first_aid_steps"`
	EmergencyTriggers []string       `json:"emergency_triggers"`
	PreventionTips    []string       `json:"prevention_tips"`
}

// EmergencyNumbers lists the contact numbers surfaced alongside guidance.
type EmergencyNumbers struct {
	General         string `json:"general"`
	PoisonControlUS string `json:"poison_control_us,omitempty"`
	Disclaimer      string `json:"disclaimer"`
}

// Base is the full injury corpus as stored on disk.
type Base struct {
	Injuries          []Injury         `json:"injuries"`
	EmergencyNumbers  EmergencyNumbers `json:"emergency_numbers"`
	GeneralDisclaimer string           `json:"general_disclaimer"`
}

// EmergencyResponse holds the canned message served on the emergency path.
type EmergencyResponse struct {
	Message string `json:"message"`
}

// EmergencyKeywords is the trigger-phrase set loaded next to the corpus.
type EmergencyKeywords struct {
	CriticalKeywords  []string          `json:"critical_keywords"`
	EmergencyResponse EmergencyResponse `json:"emergency_response"`
}
