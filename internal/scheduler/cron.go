package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/Shellboard/internal/engine"
)

// CalculateNextDue вычисляет следующее время обновления по выражению refresh.
// Расписание интерпретируется в часовом поясе loc (nil — UTC).
func CalculateNextDue(refresh string, from time.Time, loc *time.Location) (time.Time, error) {
	schedule, err := engine.ParseRefresh(refresh)
	if err != nil {
		return time.Time{}, err
	}
	return nextDue(schedule, from, loc), nil
}

// nextDue возвращает следующее время срабатывания в UTC.
func nextDue(schedule cron.Schedule, from time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return schedule.Next(from.In(loc)).UTC()
}
