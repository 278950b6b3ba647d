package announce

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gerardosocias29/cms-station/internal/models"
)

// AudioCue plays the attention chime and calls done when the sample
// finishes (or immediately if playback is fire-and-forget).
type AudioCue interface {
	Play(done func())
}

// Speaker speaks one utterance and calls done on completion. voiceHint
// is a soft preference ("male"); implementations without voice
// selection ignore it.
type Speaker interface {
	Say(text, voiceHint string, done func())
}

// Announcer turns call-out events into a chime followed by a spoken
// utterance. While one announcement is in flight every further call is
// dropped, not queued; overlapping speech is worse than a missed
// repeat, and the backend re-announces on recall anyway.
type Announcer struct {
	cue     AudioCue
	speaker Speaker
	log     *zap.Logger

	mu       sync.Mutex
	inFlight bool
}

func New(cue AudioCue, speaker Speaker, log *zap.Logger) *Announcer {
	return &Announcer{cue: cue, speaker: speaker, log: log}
}

// Utterance is the spoken form of a call-out.
func Utterance(ev models.CallOutEvent) string {
	return fmt.Sprintf("%s, on %s.", ev.Ticket(), ev.DepartmentName)
}

// Announce handles one call-out event. Malformed events are dropped
// without sound or error.
func (a *Announcer) Announce(ev models.CallOutEvent) {
	if !ev.Complete() {
		a.log.Debug("dropping incomplete call-out", zap.Any("event", ev))
		return
	}

	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		a.log.Debug("announcement in flight, dropping call-out", zap.String("ticket", ev.Ticket()))
		return
	}
	a.inFlight = true
	a.mu.Unlock()

	a.log.Info("announcing",
		zap.String("ticket", ev.Ticket()),
		zap.String("department", ev.DepartmentName))

	a.cue.Play(func() {
		a.speaker.Say(Utterance(ev), "male", func() {
			a.mu.Lock()
			a.inFlight = false
			a.mu.Unlock()
		})
	})
}
