package projections

import (
	"context"
	"sort"

	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/hotlead"
)

// GetDueHotLeadsQuery carries input for the due hot leads projection.
type GetDueHotLeadsQuery struct {
	UserID string
	Date   string
}

// GetDueHotLeadsDeps holds dependencies for the due hot leads projection.
type GetDueHotLeadsDeps struct {
	HotLeadStore HotLeadStore
}

// DueHotLead is an active lead whose follow-up falls on or before the query date.
type DueHotLead struct {
	hotlead.HotLead
	DaysOverdue int `json:"daysOverdue"`
}

// GetDueHotLeads lists the user's leads due on or before Date, most overdue first.
// PRE: Date is a valid date key
func GetDueHotLeads(ctx context.Context, query GetDueHotLeadsQuery, deps GetDueHotLeadsDeps) ([]DueHotLead, error) {
	day, err := dayrecord.ParseDateKey(query.Date)
	if err != nil {
		return nil, err
	}
	leads, err := deps.HotLeadStore.ListDue(ctx, query.UserID, query.Date)
	if err != nil {
		return nil, err
	}

	due := make([]DueHotLead, 0, len(leads))
	for _, l := range leads {
		if !l.IsDue(query.Date) {
			continue
		}
		d := DueHotLead{HotLead: l}
		if next, err := dayrecord.ParseDateKey(l.NextFollowUp); err == nil {
			d.DaysOverdue = int(day.Sub(next).Hours() / 24)
		}
		due = append(due, d)
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].NextFollowUp != due[j].NextFollowUp {
			return due[i].NextFollowUp < due[j].NextFollowUp
		}
		return due[i].Name < due[j].Name
	})
	return due, nil
}
