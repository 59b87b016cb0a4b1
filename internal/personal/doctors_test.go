package personal

import "testing"

func TestExtractDoctorNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain title", "Dr. Ahmad Hassan", "Ahmad Hassan"},
		{"no period", "Dr Sarah Connor", "Sarah Connor"},
		{"referred by", "Referred By: Dr. Omar Khalil", "Omar Khalil"},
		{"ref by", "Ref By Dr. Omar Khalil", "Omar Khalil"},
		{"physician prefix", "Physician: Dr. Lina Saad", "Lina Saad"},
		{"multiple doctors sorted", "Dr. Omar Khalil and Dr. Ahmad Hassan", "Ahmad Hassan, Omar Khalil"},
		{"duplicate mentions merged", "Dr. Ahmad Hassan / Ref By: Dr. Ahmad Hassan", "Ahmad Hassan"},
		{"signature false positive", "Dr. Signature Line", ""},
		{"lab false positive", "Dr. Labcorp", ""},
		{"no pattern", "some footer text", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDoctorNames(tt.input); got != tt.want {
				t.Errorf("ExtractDoctorNames(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
