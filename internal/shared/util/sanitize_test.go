package util

import "testing"

func TestDocumentName(t *testing.T) {
	tests := []struct {
		name    string
		company string
		role    string
		ext     string
		want    string
		wantErr bool
	}{
		{name: "spaces", company: "Acme Corp", role: "Backend Engineer", ext: "docx", want: "Acme_Corp_Backend_Engineer.docx"},
		{name: "defaults", company: " ", role: "", ext: ".pdf", want: "Company_Role.pdf"},
		{name: "separators", company: "A/B", role: "C\\D", ext: "docx", want: "A_B_C_D.docx"},
		{name: "traversal", company: "..", role: "x", ext: "docx", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := DocumentName(tt.company, tt.role, tt.ext)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DocumentName: %v", err)
			}
			if got != tt.want {
				t.Fatalf("DocumentName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeFileNameRejectsEmpty(t *testing.T) {
	if _, err := SanitizeFileName("   "); err == nil {
		t.Fatal("expected error for blank name")
	}
}
