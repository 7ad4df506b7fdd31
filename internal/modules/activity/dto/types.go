package dto

type SignalInput struct {
	AppName string
	URL     string
	Title   string
}

type ClassificationOutput struct {
	Category         string
	State            string
	Browsing         bool
	Domain           string
	Productive       bool
	HealthPerTick    float64
	HappinessPerTick float64
	RatePerMinute    float64
}

type RuleOutput struct {
	Match    string
	Pattern  string
	Category string
}
