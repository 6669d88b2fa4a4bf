package tracking

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies one flight from connect to land.
type Session struct {
	ID       string        `json:"id"`
	Profile  string        `json:"profile"`
	Geometry FrameGeometry `json:"geometry"`
	Started  time.Time     `json:"started"`
}

// NewSession starts a session with a fresh random id.
func NewSession(profile string, g FrameGeometry) Session {
	if profile == "" {
		profile = ProfileDefault
	}
	return Session{
		ID:       uuid.NewString(),
		Profile:  profile,
		Geometry: g,
		Started:  time.Now(),
	}
}

// Uptime returns how long the session has been running.
func (s Session) Uptime() time.Duration {
	return time.Since(s.Started)
}
