package logging

import "strings"

// FormatSubject builds the course/lesson/stage subject string used in console output.
func FormatSubject(course, lesson, stage string) string {
	course = strings.TrimSpace(course)
	lesson = strings.TrimSpace(lesson)
	stage = strings.TrimSpace(stage)
	parts := make([]string, 0, 2)
	if course != "" {
		parts = append(parts, course)
	}
	switch {
	case lesson != "" && stage != "":
		parts = append(parts, lesson+" ("+stage+")")
	case lesson != "":
		parts = append(parts, lesson)
	case stage != "":
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
