package intake

// Stage is the field the machine is waiting for.
type Stage int

const (
	AwaitName Stage = iota
	AwaitEmail
	AwaitPhone
	AwaitYears
	AwaitPositions
	AwaitLocation
	AwaitTechStack
	CollectingAnswers
	Ended
)

var stageNames = map[Stage]string{
	AwaitName:         "await_name",
	AwaitEmail:        "await_email",
	AwaitPhone:        "await_phone",
	AwaitYears:        "await_years",
	AwaitPositions:    "await_positions",
	AwaitLocation:     "await_location",
	AwaitTechStack:    "await_tech_stack",
	CollectingAnswers: "collecting_answers",
	Ended:             "ended",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}
