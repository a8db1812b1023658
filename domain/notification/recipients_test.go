package notification

import (
	"testing"

	"club-incentives/domain/incentive"

	"github.com/google/go-cmp/cmp"
)

type mapRecord map[string]any

func (m mapRecord) Value(column string) (any, bool) {
	v, ok := m[column]
	return v, ok
}

func addresses(rs []Recipient) []string {
	var out []string
	for _, r := range rs {
		out = append(out, r.Address)
	}
	return out
}

func TestRecipientsForRow(t *testing.T) {
	row := mapRecord{
		"VP-Membership Email":       "vpm@rotary.org",
		"VP-Education Email":        "vpe@rotary.org",
		"Treasurer Email":           "treasurer@rotary.org",
		"President Email":           " president@rotary.org ",
		"Division Director Email":   "div@district.org",
		"Area Director Email":       "",
		"Finance Director Email":    "finance@district.org",
		"Incentives Director Email": "cgd@district.org",
		"Incentives Mailbox Email":  "incentives@district.org",
	}

	tests := []struct {
		name   string
		typ    incentive.Type
		wantTo []string
	}{
		{"club growth", incentive.ClubGrowth, []string{"president@rotary.org", "treasurer@rotary.org", "vpm@rotary.org"}},
		{"program quality", incentive.ProgramQuality, []string{"president@rotary.org", "treasurer@rotary.org", "vpe@rotary.org"}},
		{"unknown type", "XYZ", []string{"president@rotary.org", "treasurer@rotary.org"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecipientsForRow(row, tt.typ)
			if diff := cmp.Diff(tt.wantTo, addresses(got.To)); diff != "" {
				t.Errorf("To mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"div@district.org", "finance@district.org", "cgd@district.org"}, addresses(got.CC)); diff != "" {
				t.Errorf("CC mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"incentives@district.org"}, addresses(got.BCC)); diff != "" {
				t.Errorf("BCC mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecipientsForRow_NoOfficers(t *testing.T) {
	got := RecipientsForRow(mapRecord{"President Email": ""}, incentive.ClubGrowth)
	if len(got.To) != 0 || len(got.CC) != 0 || len(got.BCC) != 0 {
		t.Errorf("RecipientsForRow() = %+v, want no recipients", got)
	}
}
