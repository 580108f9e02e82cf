package implication

import "testing"

func TestMatches(t *testing.T) {
	state := map[string]any{
		"sensoryArchitecture": map[string]any{
			"primaryModalities": []any{"visual-visible", "echolocation"},
			"typedList":         []string{"chemoreception"},
			"mixedList":         []any{3, true, nil, "thermal"},
			"emptyList":         []any{},
		},
		"planetaryConditions": map[string]any{
			"dayNightCycle": "regular",
			"moonCount":     2,
			"habitable":     true,
			"unknown":       nil,
		},
	}

	tests := []struct {
		name      string
		condition Condition
		want      bool
	}{
		{name: "list any element", condition: Condition{Field: "sensoryArchitecture.primaryModalities", Values: []string{"echolocation", "tactile"}}, want: true},
		{name: "list no element", condition: Condition{Field: "sensoryArchitecture.primaryModalities", Values: []string{"visual-infrared"}}, want: false},
		{name: "typed string list", condition: Condition{Field: "sensoryArchitecture.typedList", Values: []string{"chemoreception"}}, want: true},
		{name: "mixed list skips non-strings", condition: Condition{Field: "sensoryArchitecture.mixedList", Values: []string{"3", "true", "thermal"}}, want: true},
		{name: "mixed list no coercion", condition: Condition{Field: "sensoryArchitecture.mixedList", Values: []string{"3", "true"}}, want: false},
		{name: "empty list", condition: Condition{Field: "sensoryArchitecture.emptyList", Values: []string{"visual-visible"}}, want: false},
		{name: "scalar present", condition: Condition{Field: "planetaryConditions.dayNightCycle", Values: []string{"regular", "long"}}, want: true},
		{name: "scalar absent from values", condition: Condition{Field: "planetaryConditions.dayNightCycle", Values: []string{"tidally-locked"}}, want: false},
		{name: "number not coerced", condition: Condition{Field: "planetaryConditions.moonCount", Values: []string{"2"}}, want: false},
		{name: "bool not coerced", condition: Condition{Field: "planetaryConditions.habitable", Values: []string{"true"}}, want: false},
		{name: "null never matches", condition: Condition{Field: "planetaryConditions.unknown", Values: []string{"", "null"}}, want: false},
		{name: "missing field", condition: Condition{Field: "planetaryConditions.seasonality", Values: []string{"strong"}}, want: false},
		{name: "record is not a scalar", condition: Condition{Field: "planetaryConditions", Values: []string{"regular"}}, want: false},
		{name: "no allowed values", condition: Condition{Field: "planetaryConditions.dayNightCycle"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(state, tt.condition); got != tt.want {
				t.Fatalf("Matches(%+v) = %v, want %v", tt.condition, got, tt.want)
			}
		})
	}
}
