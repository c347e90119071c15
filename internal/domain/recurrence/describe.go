package recurrence

import (
	"fmt"
	"strings"
)

var weekdayNames = map[string]string{
	"MO": "Monday",
	"TU": "Tuesday",
	"WE": "Wednesday",
	"TH": "Thursday",
	"FR": "Friday",
	"SA": "Saturday",
	"SU": "Sunday",
}

var monthNames = map[string]string{
	"1": "January", "2": "February", "3": "March", "4": "April",
	"5": "May", "6": "June", "7": "July", "8": "August",
	"9": "September", "10": "October", "11": "November", "12": "December",
}

var ordinalNames = map[string]string{
	"1":  "First",
	"2":  "Second",
	"3":  "Third",
	"4":  "Fourth",
	"-1": "Last",
}

const (
	weekdaySet = "MO,TU,WE,TH,FR"
	weekendSet = "SA,SU"
)

// Describe renders a short human summary of rule, e.g. "Every 2 weeks on
// Monday, Friday" or "Every month on Last Weekday". Unrecognised shapes
// fall back to "Repeats".
func Describe(rule string) string {
	parts := splitRule(normalize(rule))
	interval := parts["INTERVAL"]
	if interval == "" {
		interval = "1"
	}

	switch parts["FREQ"] {
	case "DAILY":
		return every(interval, "day", "days")

	case "WEEKLY":
		byday := parts["BYDAY"]
		if byday == weekdaySet {
			return "Every weekday"
		}
		weekPart := every(interval, "week", "weeks")
		if byday == "" {
			return weekPart
		}
		days := strings.Split(byday, ",")
		labels := make([]string, 0, len(days))
		for _, d := range days {
			labels = append(labels, weekdayLabel(d))
		}
		return weekPart + " on " + strings.Join(labels, ", ")

	case "MONTHLY":
		monthPart := every(interval, "month", "months")
		if suffix := dayOfPeriod(parts); suffix != "" {
			return monthPart + " on " + suffix
		}
		return monthPart

	case "YEARLY":
		month := "month"
		if name, ok := monthNames[parts["BYMONTH"]]; ok {
			month = name
		} else if parts["BYMONTH"] != "" {
			month = parts["BYMONTH"]
		}
		if suffix := dayOfPeriod(parts); suffix != "" {
			return "Every " + month + " on " + suffix
		}
		return "Every " + month
	}

	return "Repeats"
}

func dayOfPeriod(parts map[string]string) string {
	if md := parts["BYMONTHDAY"]; md != "" {
		return "day " + md
	}
	byday, setpos := parts["BYDAY"], parts["BYSETPOS"]
	if byday == "" || setpos == "" {
		return ""
	}
	ordinal, ok := ordinalNames[setpos]
	if !ok {
		ordinal = "First"
	}
	switch byday {
	case weekdaySet:
		return ordinal + " Weekday"
	case weekendSet:
		return ordinal + " Weekend Day"
	default:
		return ordinal + " " + weekdayLabel(byday)
	}
}

func every(interval, singular, plural string) string {
	if interval == "1" {
		return "Every " + singular
	}
	return fmt.Sprintf("Every %s %s", interval, plural)
}

func weekdayLabel(code string) string {
	if name, ok := weekdayNames[code]; ok {
		return name
	}
	return code
}

func splitRule(rule string) map[string]string {
	parts := make(map[string]string)
	for _, part := range strings.Split(rule, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found || key == "" || value == "" {
			continue
		}
		parts[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return parts
}
