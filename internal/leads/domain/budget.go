package domain

// Budget is one of the fixed project budget tiers offered by the form.
type Budget string

const (
	Budget30to50     Budget = "30-50k"
	Budget50to150    Budget = "50-150k"
	Budget150to300   Budget = "150-300k"
	Budget300to500   Budget = "300-500k"
	Budget500AndMore Budget = "500k+"
)

var budgetLabels = map[Budget]string{
	Budget30to50:     "30-50 тыс",
	Budget50to150:    "50-150 тыс",
	Budget150to300:   "150-300 тыс",
	Budget300to500:   "300-500 тыс",
	Budget500AndMore: "500+ тыс",
}

// Valid reports whether b is a known tier.
func (b Budget) Valid() bool {
	_, ok := budgetLabels[b]
	return ok
}

// Label is the human form used in notifications. Unknown tiers render as-is.
func (b Budget) Label() string {
	if label, ok := budgetLabels[b]; ok {
		return label
	}
	return string(b)
}
