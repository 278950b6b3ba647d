package announce

import (
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	htgotts "github.com/hegedustibor/htgo-tts"
	"github.com/hegedustibor/htgo-tts/handlers"
	"github.com/hegedustibor/htgo-tts/voices"
	"go.uber.org/zap"
)

// NewCue selects the chime backend: "real" decodes and plays the wav,
// anything else logs or stays silent. Selection by config string, so a
// board without speakers degrades without code changes.
func NewCue(kind, wavPath string, log *zap.Logger) AudioCue {
	switch kind {
	case "real":
		cue, err := newBeepCue(wavPath, log)
		if err != nil {
			log.Warn("chime unavailable, using log cue", zap.Error(err))
			return logCue{log: log}
		}
		return cue
	case "log":
		return logCue{log: log}
	default:
		return noopCue{}
	}
}

// NewSpeaker selects the speech backend the same way.
func NewSpeaker(kind, audioDir string, log *zap.Logger) Speaker {
	switch kind {
	case "real":
		return &ttsSpeaker{
			speech: htgotts.Speech{Folder: audioDir, Language: voices.English, Handler: &handlers.Native{}},
			log:    log,
		}
	case "log":
		return logSpeaker{log: log}
	default:
		return noopSpeaker{}
	}
}

type beepCue struct {
	buffer *beep.Buffer
	log    *zap.Logger
}

func newBeepCue(path string, log *zap.Logger) (*beepCue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}

	// Keep the decoded sample resident; the chime fires often and the
	// file may live on slow media.
	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return &beepCue{buffer: buffer, log: log}, nil
}

func (c *beepCue) Play(done func()) {
	streamer := c.buffer.Streamer(0, c.buffer.Len())
	speaker.Play(beep.Seq(streamer, beep.Callback(done)))
}

type ttsSpeaker struct {
	speech htgotts.Speech
	log    *zap.Logger
}

func (s *ttsSpeaker) Say(text, voiceHint string, done func()) {
	// The synthesis backend has no male/female selection; the hint is
	// soft and dropped here.
	go func() {
		if err := s.speech.Speak(text); err != nil {
			s.log.Warn("speech failed", zap.Error(err))
		}
		done()
	}()
}

type logCue struct {
	log *zap.Logger
}

func (c logCue) Play(done func()) {
	c.log.Info("chime")
	done()
}

type logSpeaker struct {
	log *zap.Logger
}

func (s logSpeaker) Say(text, voiceHint string, done func()) {
	s.log.Info("speak", zap.String("text", text), zap.String("voice", voiceHint))
	done()
}

type noopCue struct{}

func (noopCue) Play(done func()) { done() }

type noopSpeaker struct{}

func (noopSpeaker) Say(_, _ string, done func()) { done() }
