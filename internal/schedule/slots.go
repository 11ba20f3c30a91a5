// Package schedule computes hourly availability for venues and masters.
// All functions are pure: bookings come in as spans, no storage access.
package schedule

import "fmt"

// Span занятый интервал: час начала и длительность в часах.
type Span struct {
	StartHour     int
	DurationHours int
}

// Candidates возвращает часы, с которых может начаться бронирование
// длительности durationHours: от открытия до closeHour-durationHours
// включительно. Слот предлагается только если вся длительность
// помещается до закрытия.
func Candidates(openHour, closeHour, durationHours int) []int {
	if durationHours < 1 {
		return nil
	}
	last := closeHour - durationHours
	if last < openHour {
		return nil
	}
	slots := make([]int, 0, last-openHour+1)
	for h := openHour; h <= last; h++ {
		slots = append(slots, h)
	}
	return slots
}

// Occupied собирает часы, с которых нельзя начать новое бронирование
// длительности candidateDuration. Для каждого активного интервала
// закрыты его собственные часы [start, start+duration) и часы
// [start-(candidateDuration-1), start): старт в этом окне пересёкся бы
// с интервалом, хотя сам час в него не входит. Пересечение определяется
// по интервалам, не по вхождению часа начала.
func Occupied(spans []Span, openHour, candidateDuration int) map[int]struct{} {
	occupied := make(map[int]struct{})
	for _, s := range spans {
		for h := s.StartHour; h < s.StartHour+s.DurationHours; h++ {
			occupied[h] = struct{}{}
		}
		for offset := 1; offset < candidateDuration; offset++ {
			prev := s.StartHour - offset
			if prev < openHour {
				break
			}
			occupied[prev] = struct{}{}
		}
	}
	return occupied
}

// Available кандидаты минус занятые, по возрастанию.
func Available(openHour, closeHour, candidateDuration int, spans []Span) []int {
	occupied := Occupied(spans, openHour, candidateDuration)
	candidates := Candidates(openHour, closeHour, candidateDuration)
	free := make([]int, 0, len(candidates))
	for _, h := range candidates {
		if _, busy := occupied[h]; !busy {
			free = append(free, h)
		}
	}
	return free
}

// Format переводит часы в слоты вида "HH:00".
func Format(hours []int) []string {
	slots := make([]string, 0, len(hours))
	for _, h := range hours {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
	}
	return slots
}

// Intersect возвращает слоты, присутствующие в обоих списках, в порядке
// первого. Используется для брони «баня + мастер»: час должен быть
// свободен у обеих сторон.
func Intersect(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, s := range a {
		if _, ok := inB[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
