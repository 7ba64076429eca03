package server

import "time"

const EventVersion = 1

type Event struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	Timestamp string `json:"timestamp"`
}

type PhaseChangedEvent struct {
	Event
	Phase string `json:"phase"`
}

type RoundStartedEvent struct {
	Event
	Length int `json:"length"`
	Score  int `json:"score"`
}

type GuessResultEvent struct {
	Event
	Letter   string `json:"letter"`
	Correct  bool   `json:"correct"`
	Position int    `json:"position"`
}

type ScoreChangedEvent struct {
	Event
	Score     int `json:"score"`
	HighScore int `json:"high_score"`
}

type GameOverEvent struct {
	Event
	Score     int    `json:"score"`
	HighScore int    `json:"high_score"`
	Expected  string `json:"expected"`
}

type ConnectionEvent struct {
	Event
	Connected bool `json:"connected"`
}

func newEvent(eventType string, now time.Time) Event {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Event{
		Type:      eventType,
		Version:   EventVersion,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}
