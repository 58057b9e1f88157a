package weather

import "time"

// climateTable holds the ten seasonal scenarios selectable by day offset from
// "today". Physical parameters never change at runtime; ProfileFor only
// stamps the display date.
var climateTable = []ClimateProfile{
	{Name: "Clear summer day", MaxT: 31, MinT: 18, HumidBase: 38, CloudKind: CloudClear, SunriseHour: 5.9, SunsetHour: 20.1},
	{Name: "Hazy and warm", MaxT: 29, MinT: 17, HumidBase: 45, CloudKind: CloudHazy, SunriseHour: 6.0, SunsetHour: 20.0},
	{Name: "Afternoon buildup", MaxT: 30, MinT: 19, HumidBase: 55, CloudKind: CloudAfternoonBuildup, SunriseHour: 6.0, SunsetHour: 19.9},
	{Name: "Overcast and mild", MaxT: 24, MinT: 16, HumidBase: 68, CloudKind: CloudOvercast, SunriseHour: 6.1, SunsetHour: 19.8},
	{Name: "Clear and dry", MaxT: 33, MinT: 20, HumidBase: 30, CloudKind: CloudClear, SunriseHour: 6.2, SunsetHour: 19.7},
	{Name: "Humid haze", MaxT: 28, MinT: 21, HumidBase: 62, CloudKind: CloudHazy, SunriseHour: 6.2, SunsetHour: 19.6},
	{Name: "Storm buildup", MaxT: 27, MinT: 18, HumidBase: 70, CloudKind: CloudAfternoonBuildup, SunriseHour: 6.3, SunsetHour: 19.5},
	{Name: "Overcast cool front", MaxT: 21, MinT: 13, HumidBase: 75, CloudKind: CloudOvercast, SunriseHour: 6.4, SunsetHour: 19.4},
	{Name: "Post-front clear", MaxT: 25, MinT: 12, HumidBase: 42, CloudKind: CloudClear, SunriseHour: 6.4, SunsetHour: 19.3},
	{Name: "Settled haze", MaxT: 27, MinT: 15, HumidBase: 50, CloudKind: CloudHazy, SunriseHour: 6.5, SunsetHour: 19.2},
}

// ProfileCount is the number of day-ahead scenarios in the climate table.
const ProfileCount = 10

// ProfileFor returns the climate profile for the given day offset from
// "today". Offsets outside [0, ProfileCount) clamp to 0 (today). The returned
// profile is a copy; the table itself is never mutated.
func ProfileFor(dayOffset int, today time.Time) ClimateProfile {
	if dayOffset < 0 || dayOffset >= ProfileCount {
		dayOffset = 0
	}

	profile := climateTable[dayOffset]
	profile.DayOffset = dayOffset
	profile.Date = today.AddDate(0, 0, dayOffset)
	return profile
}
