package incentive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		raw  string
		want Type
	}{
		{"CGD", ClubGrowth},
		{" pqd ", ProgramQuality},
		{"cgd", ClubGrowth},
		{"xyz", Type("XYZ")},
		{"XYZ", Type("XYZ")},
		{"", Type("")},
	}
	for _, tt := range tests {
		if got := ParseType(tt.raw); got != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestOfficerRoles(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want []string
	}{
		{"club growth", ClubGrowth, []string{"VP-Membership Email", "Treasurer Email", "President Email"}},
		{"program quality", ProgramQuality, []string{"VP-Education Email", "Treasurer Email", "President Email"}},
		{"unknown", Type("XYZ"), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoleColumns(OfficerRoles(tt.typ))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("officer columns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
