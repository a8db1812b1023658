package notification

import (
	"strings"

	"club-incentives/domain/incentive"
	"club-incentives/domain/sheet"
)

// Record is an enriched row read by column name
type Record interface {
	Value(column string) (any, bool)
}

// Recipients groups the addresses one certificate email goes to
type Recipients struct {
	To  []Recipient
	CC  []Recipient
	BCC []Recipient
}

// toRoles are ordered President, Treasurer, then the type's vice president
func toRoles(t incentive.Type) []incentive.Role {
	roles := []incentive.Role{incentive.President, incentive.Treasurer}
	switch t {
	case incentive.ClubGrowth:
		roles = append(roles, incentive.VPMembership)
	case incentive.ProgramQuality:
		roles = append(roles, incentive.VPEducation)
	}
	return roles
}

var ccRoles = []incentive.Role{
	incentive.DivisionDirector,
	incentive.AreaDirector,
	incentive.FinanceDirector,
	incentive.IncentivesDirector,
}

// RecipientsForRow picks the club officers as To, the district leaders as CC
// and the shared mailbox as BCC. Blank addresses are dropped.
func RecipientsForRow(rec Record, t incentive.Type) Recipients {
	return Recipients{
		To:  roleRecipients(rec, toRoles(t)),
		CC:  roleRecipients(rec, ccRoles),
		BCC: roleRecipients(rec, []incentive.Role{incentive.IncentivesMailbox}),
	}
}

func roleRecipients(rec Record, roles []incentive.Role) []Recipient {
	var out []Recipient
	for _, role := range roles {
		v, ok := rec.Value(role.Column())
		if !ok {
			continue
		}
		if addr := strings.TrimSpace(sheet.Text(v)); addr != "" {
			out = append(out, Recipient{Address: addr})
		}
	}
	return out
}
