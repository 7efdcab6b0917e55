package book

import (
	"slices"
	"time"
)

// DefaultWindow is the number of days, starting today, that Upcoming looks ahead.
const DefaultWindow = 7

const day = 24 * time.Hour

// WeekdayGroup lists the contacts whose birthday is celebrated on Day.
type WeekdayGroup struct {
	Day   time.Weekday
	Date  time.Time // earliest celebration date in the group, UTC midnight
	Names []string
}

// Upcoming returns the contacts whose next birthday falls within window days
// of now (today included, day window excluded), grouped by the weekday it is
// celebrated on. Weekend birthdays are celebrated the following Monday, so
// Saturday and Sunday never appear. Groups are ordered by their earliest
// celebration date; names within a group keep the book's alphabetical order.
// A non-positive window selects DefaultWindow.
//
// A 29 February birthday falls on 1 March in non-leap years.
func (b *Book) Upcoming(now time.Time, window int) []WeekdayGroup {
	if window <= 0 {
		window = DefaultWindow
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var groups []WeekdayGroup
	for _, name := range b.names {
		bd := b.contacts[name].Birthday
		if bd == nil {
			continue
		}

		next := time.Date(today.Year(), bd.Month, bd.Day, 0, 0, 0, 0, time.UTC)
		if next.Before(today) {
			next = time.Date(today.Year()+1, bd.Month, bd.Day, 0, 0, 0, 0, time.UTC)
		}
		if days := int(next.Sub(today) / day); days >= window {
			continue
		}

		celebrated := next
		switch next.Weekday() {
		case time.Saturday:
			celebrated = next.AddDate(0, 0, 2)
		case time.Sunday:
			celebrated = next.AddDate(0, 0, 1)
		}

		i := slices.IndexFunc(groups, func(g WeekdayGroup) bool { return g.Day == celebrated.Weekday() })
		if i < 0 {
			groups = append(groups, WeekdayGroup{Day: celebrated.Weekday(), Date: celebrated})
			i = len(groups) - 1
		}
		groups[i].Names = append(groups[i].Names, name)
		if celebrated.Before(groups[i].Date) {
			groups[i].Date = celebrated
		}
	}

	slices.SortStableFunc(groups, func(g1, g2 WeekdayGroup) int { return g1.Date.Compare(g2.Date) })
	return groups
}
