package types

// REPSScore is the four-factor dashboard score. Each factor is an integer,
// normally within 0-100.
type REPSScore struct {
	Reliability     int `json:"reliability"`
	Efficiency      int `json:"efficiency"`
	Professionalism int `json:"professionalism"`
	Service         int `json:"service"`
}

// CompletionStatus summarizes how far a profile is through onboarding.
type CompletionStatus struct {
	Status               ProfileStatus   `json:"status"`
	CompletionSteps      CompletionSteps `json:"completionSteps"`
	CompletionPercentage int             `json:"completionPercentage"`
	IsComplete           bool            `json:"isComplete"`
}
