package probe

import (
	"context"
	"sync"
	"time"

	"github.com/smazurov/alsaprobe/internal/audio"
	"github.com/smazurov/alsaprobe/internal/logging"
)

// Options configures a CardProbe.
type Options struct {
	// Sink receives each result as soon as it is produced (optional).
	Sink Sink

	// Logger for step failures. If nil, uses the "probe" module logger.
	Logger logging.Logger
}

// CardProbe enumerates cards and probes each one in turn.
type CardProbe struct {
	sub    audio.Subsystem
	sink   Sink
	logger logging.Logger

	// runMu keeps runs from overlapping so no two mixer contexts are alive at once.
	runMu sync.Mutex
}

// New creates a CardProbe over sub.
func New(sub audio.Subsystem, opts *Options) *CardProbe {
	if opts == nil {
		opts = &Options{}
	}

	sink := opts.Sink
	if sink == nil {
		sink = nopSink{}
	}
	var logger logging.Logger = opts.Logger
	if logger == nil {
		logger = logging.GetLogger("probe")
	}

	return &CardProbe{
		sub:    sub,
		sink:   sink,
		logger: logger,
	}
}

// Enumerate starts a new walk from the first card.
func (p *CardProbe) Enumerate() *Enumerator {
	return newEnumerator(p.sub)
}

// ProbeDevice fetches both names of the card, then opens a mixer and, if that
// worked, attaches, registers and loads it. Every step is attempted whatever
// happened before; an opened mixer is always closed before returning.
func (p *CardProbe) ProbeDevice(handle DeviceHandle) (result ProbeResult) {
	result = ProbeResult{Handle: handle, Address: handle.Address()}
	card := int(handle)

	p.step(&result, StepCardName, func() error {
		name, err := p.sub.CardName(card)
		result.ShortName = name
		return err
	})
	p.step(&result, StepCardLongName, func() error {
		name, err := p.sub.CardLongName(card)
		result.LongName = name
		return err
	})

	var mixer audio.Mixer
	opened := p.step(&result, StepMixerOpen, func() error {
		var err error
		mixer, err = p.sub.OpenMixer()
		if err == nil && mixer == nil {
			err = errNilMixer
		}
		return err
	})
	if !opened {
		return result
	}
	defer func() {
		if err := mixer.Close(); err != nil {
			p.logger.Warn("Failed to close mixer", "card", card, "error", err)
		}
		result.MixerReleased = true
	}()

	p.step(&result, StepMixerAttach, func() error { return mixer.Attach(result.Address) })
	p.step(&result, StepSelemRegister, mixer.RegisterSimple)
	if p.step(&result, StepMixerLoad, mixer.Load) {
		result.Elements = mixer.Elements()
	}
	return result
}

// step runs call, records its outcome in result and reports whether it succeeded.
func (p *CardProbe) step(result *ProbeResult, name StepName, call func() error) bool {
	start := time.Now()
	err := call()
	sr := StepResult{Step: name, Elapsed: time.Since(start)}

	if err != nil {
		code := audio.Code(err)
		if code == 0 {
			code = -1
		}
		// Names are absent when their lookup failed.
		switch name {
		case StepCardName:
			result.ShortName = ""
		case StepCardLongName:
			result.LongName = ""
		}
		sr.Code = code
		sr.Error = err.Error()
		sr.Err = &StepError{Handle: result.Handle, Step: name, Code: code, Err: err}
		p.logger.Warn("Probe step failed", "card", int(result.Handle), "step", string(name), "code", code, "error", err)
	} else {
		p.logger.Debug("Probe step succeeded", "card", int(result.Handle), "step", string(name), "elapsed", sr.Elapsed)
	}

	result.Steps = append(result.Steps, sr)
	return err == nil
}

// Run probes every card in enumeration order, handing each result to the sink
// as it is produced. It returns an *EnumerationError and no results only when
// the first enumeration call fails; a later enumeration failure ends the run
// early without an error. Cancellation is checked between cards and returns
// the results gathered so far with the context error.
func (p *CardProbe) Run(ctx context.Context) ([]ProbeResult, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now()
	results := make([]ProbeResult, 0)
	summary := RunSummary{}

	enum := p.Enumerate()
	for ctx.Err() == nil && enum.Next() {
		result := p.ProbeDevice(enum.Handle())
		results = append(results, result)
		if !result.OK() {
			summary.Failed++
		}
		p.sink.DeviceProbed(result)
	}

	summary.Cards = len(results)
	summary.Duration = time.Since(start)

	if err := enum.Err(); err != nil {
		if IsFatal(err) {
			p.logger.Error("Card enumeration failed", "error", err)
			summary.Err = err
			p.sink.RunFinished(summary)
			return nil, err
		}
		p.logger.Warn("Card enumeration ended early", "error", err, "cards", len(results))
	}

	if err := ctx.Err(); err != nil {
		p.logger.Info("Probe run cancelled", "cards", len(results))
		summary.Err = err
		p.sink.RunFinished(summary)
		return results, err
	}

	p.logger.Info("Probe run finished", "cards", summary.Cards, "failed", summary.Failed, "duration", summary.Duration)
	p.sink.RunFinished(summary)
	return results, nil
}
