package handler

import "testing"

func TestTemplateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     templateRequest
		wantErr bool
	}{
		{"everyday", templateRequest{Title: "Brush teeth", RepeatType: "everyday"}, false},
		{"weekday", templateRequest{Title: "Homework", RepeatType: "weekday"}, false},
		{"one-off", templateRequest{Title: "Dentist", RepeatType: "none"}, false},
		{"custom with days", templateRequest{Title: "Piano", RepeatType: "custom", RepeatDays: []int{1, 3, 5}}, false},
		{"custom without days", templateRequest{Title: "Piano", RepeatType: "custom"}, true},
		{"custom with empty days", templateRequest{Title: "Piano", RepeatType: "custom", RepeatDays: []int{}}, true},
		{"custom with out-of-range day", templateRequest{Title: "Piano", RepeatType: "custom", RepeatDays: []int{7}}, true},
		{"custom with negative day", templateRequest{Title: "Piano", RepeatType: "custom", RepeatDays: []int{-1}}, true},
		{"blank title", templateRequest{Title: "   ", RepeatType: "everyday"}, true},
		{"unknown repeat type", templateRequest{Title: "Piano", RepeatType: "monthly"}, true},
	}
	for _, tt := range tests {
		msg := tt.req.validate()
		if tt.wantErr && msg == "" {
			t.Errorf("%s: validate accepted, want rejection", tt.name)
		}
		if !tt.wantErr && msg != "" {
			t.Errorf("%s: validate rejected with %q, want accepted", tt.name, msg)
		}
	}
}

func TestTemplateRequestValidateClearsDaysForNonCustom(t *testing.T) {
	req := templateRequest{Title: "Brush teeth", RepeatType: "everyday", RepeatDays: []int{1, 2}}
	if msg := req.validate(); msg != "" {
		t.Fatalf("validate rejected with %q", msg)
	}
	if req.RepeatDays != nil {
		t.Errorf("repeat days = %v, want cleared for non-custom templates", req.RepeatDays)
	}
}
