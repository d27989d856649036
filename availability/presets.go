package availability

// =============================================================================
// QUICK PATTERN PRESETS
// =============================================================================
// Presets are conveniences that expand to seven pattern upserts. They are
// not engine state, but the expansions are fixed so every client produces
// the same rows.

type Preset string

const (
	PresetFullTime     Preset = "full_time"     // Mon-Fri 09:00-17:00
	PresetPartTime     Preset = "part_time"     // Mon-Fri 09:00-13:00
	PresetWeekendsOnly Preset = "weekends_only" // Sat-Sun 10:00-18:00
)

func (p Preset) Valid() bool {
	switch p {
	case PresetFullTime, PresetPartTime, PresetWeekendsOnly:
		return true
	}
	return false
}

// presetDay is one day's slot inside a preset expansion.
type presetDay struct {
	Available bool
	Start     TimeOfDay
	End       TimeOfDay
}

var presetWeeks = map[Preset][7]presetDay{
	PresetFullTime: weekOf(map[int]presetDay{
		1: {true, MustTimeOfDay("09:00"), MustTimeOfDay("17:00")},
		2: {true, MustTimeOfDay("09:00"), MustTimeOfDay("17:00")},
		3: {true, MustTimeOfDay("09:00"), MustTimeOfDay("17:00")},
		4: {true, MustTimeOfDay("09:00"), MustTimeOfDay("17:00")},
		5: {true, MustTimeOfDay("09:00"), MustTimeOfDay("17:00")},
	}),
	PresetPartTime: weekOf(map[int]presetDay{
		1: {true, MustTimeOfDay("09:00"), MustTimeOfDay("13:00")},
		2: {true, MustTimeOfDay("09:00"), MustTimeOfDay("13:00")},
		3: {true, MustTimeOfDay("09:00"), MustTimeOfDay("13:00")},
		4: {true, MustTimeOfDay("09:00"), MustTimeOfDay("13:00")},
		5: {true, MustTimeOfDay("09:00"), MustTimeOfDay("13:00")},
	}),
	PresetWeekendsOnly: weekOf(map[int]presetDay{
		0: {true, MustTimeOfDay("10:00"), MustTimeOfDay("18:00")},
		6: {true, MustTimeOfDay("10:00"), MustTimeOfDay("18:00")},
	}),
}

// weekOf fills the seven-day array, leaving unlisted days unavailable.
func weekOf(days map[int]presetDay) [7]presetDay {
	var week [7]presetDay
	for dow, d := range days {
		week[dow] = d
	}
	return week
}

// PresetWeek returns the seven upsert inputs a preset expands to, ordered
// Sunday through Saturday.
func PresetWeek(workerID WorkerID, preset Preset) ([]UpsertPatternInput, error) {
	week, ok := presetWeeks[preset]
	if !ok {
		return nil, invalidField("preset", "unknown preset "+string(preset))
	}
	inputs := make([]UpsertPatternInput, 7)
	for dow, day := range week {
		in := UpsertPatternInput{
			WorkerID:    workerID,
			DayOfWeek:   dow,
			IsAvailable: day.Available,
		}
		if day.Available {
			start, end := day.Start, day.End
			in.StartTime = &start
			in.EndTime = &end
		}
		inputs[dow] = in
	}
	return inputs, nil
}
