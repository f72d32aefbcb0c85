package board

// Summary is the weekly overview shown under a board.
type Summary struct {
	TotalActivities int
	Categories      map[Category]int
	ByDay           map[Day]int
	Slots           int
	// ScheduledMinutes sums the slot length of every cell holding at least one activity.
	ScheduledMinutes int
}

// Summarize counts a board's activities. Activities without a category count as other.
func Summarize(b Board) Summary {
	sum := Summary{
		Categories: make(map[Category]int),
		ByDay:      make(map[Day]int),
		Slots:      len(b.TimeSlots),
	}

	for key, list := range b.Activities {
		if len(list) == 0 {
			continue
		}
		for _, a := range list {
			cat := a.Category
			if cat == "" {
				cat = CategoryOther
			}
			sum.Categories[cat]++
		}
		sum.TotalActivities += len(list)

		day, slotID, ok := key.Split()
		if !ok {
			continue
		}
		sum.ByDay[day] += len(list)
		if slot, ok := b.Slot(slotID); ok {
			sum.ScheduledMinutes += SlotMinutes(slot.StartTime, slot.EndTime)
		}
	}

	return sum
}
