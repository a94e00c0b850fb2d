// Package heartbeat runs periodic triggers that inject a synthesized user
// turn into the LLM orchestrator, letting the agent decide whether anything
// is worth surfacing to the user.
package heartbeat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/config"
)

// sentinelOK is the canonical response the orchestrator returns when a
// heartbeat or briefing check finds nothing worth reporting.
const sentinelOK = "HEARTBEAT_OK"

const defaultAckMaxChars = 300

// Dispatcher sends a synthesized user message through the orchestrator for
// sessionKey and returns the assistant's reply text.
type Dispatcher func(ctx context.Context, sessionKey, prompt string) (string, error)

// Deliverer forwards a non-suppressed heartbeat reply to its target.
type Deliverer func(target, text string) error

// Loop periodically fires heartbeat (or briefing) turns per cfg.
type Loop struct {
	cfg      *config.HeartbeatConfig
	dispatch Dispatcher
	deliver  Deliverer
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a Loop. cfg.Every of "" or "0m" disables it (Start becomes a
// no-op), matching the documented default-disabled convention.
func New(cfg *config.HeartbeatConfig, dispatch Dispatcher, deliver Deliverer, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{cfg: cfg, dispatch: dispatch, deliver: deliver, logger: logger}
}

// Enabled reports whether this loop's configured interval is non-zero.
func (l *Loop) Enabled() bool {
	return l.interval() > 0
}

func (l *Loop) interval() time.Duration {
	if l.cfg == nil || l.cfg.Every == "" {
		return 0
	}
	d, err := time.ParseDuration(l.cfg.Every)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// Start begins the tick loop in a background goroutine. A no-op if this
// loop is disabled.
func (l *Loop) Start(ctx context.Context) {
	interval := l.interval()
	if interval <= 0 {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				l.fire(runCtx)
			}
		}
	}()
}

// Stop cancels the tick loop and waits for it to exit.
func (l *Loop) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	if l.done != nil {
		<-l.done
	}
}

func (l *Loop) fire(ctx context.Context) {
	if !inActiveHours(l.cfg.ActiveHours, time.Now()) {
		return
	}

	sessionKey := l.cfg.Session
	if sessionKey == "" {
		sessionKey = "main"
	}
	prompt := l.cfg.Prompt
	if prompt == "" {
		prompt = "heartbeat check"
	}

	reply, err := l.dispatch(ctx, sessionKey, prompt)
	if err != nil {
		l.logger.Error("heartbeat: dispatch failed", "session", sessionKey, "error", err)
		return
	}

	msg, suppress := l.filterAck(reply)
	if suppress {
		return
	}

	target := l.cfg.Target
	if target == "" {
		target = "last"
	}
	if target == "none" {
		return
	}
	if l.cfg.To != "" {
		target = l.cfg.To
	}
	if l.deliver != nil {
		if err := l.deliver(target, msg); err != nil {
			l.logger.Error("heartbeat: delivery failed", "target", target, "error", err)
		}
	}
}

// filterAck decides whether reply is just the canonical "nothing to report"
// ack (suppressed) or carries a real message worth delivering. A reply that
// starts with the sentinel and has no more than AckMaxChars of trailing
// content is treated as pure ack; anything beyond that is forwarded as the
// message (the sentinel prefix stripped).
func (l *Loop) filterAck(reply string) (string, bool) {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, sentinelOK) {
		return trimmed, trimmed == ""
	}
	remainder := strings.TrimSpace(strings.TrimPrefix(trimmed, sentinelOK))
	maxChars := l.cfg.AckMaxChars
	if maxChars <= 0 {
		maxChars = defaultAckMaxChars
	}
	if len(remainder) <= maxChars {
		return "", true
	}
	return remainder, false
}

// inActiveHours reports whether now falls within ah's [Start, End) window in
// ah's timezone. A nil config means always active.
func inActiveHours(ah *config.ActiveHoursConfig, now time.Time) bool {
	if ah == nil || ah.Start == "" || ah.End == "" {
		return true
	}
	loc := time.Local
	if ah.Timezone != "" {
		if l, err := time.LoadLocation(ah.Timezone); err == nil {
			loc = l
		}
	}
	local := now.In(loc)
	startH, startM, errS := parseHHMM(ah.Start)
	endH, endM, errE := parseHHMM(ah.End)
	if errS != nil || errE != nil {
		return true
	}
	cur := local.Hour()*60 + local.Minute()
	start := startH*60 + startM
	end := endH*60 + endM
	if start <= end {
		return cur >= start && cur < end
	}
	// Window wraps past midnight (e.g. 22:00-06:00).
	return cur >= start || cur < end
}

func parseHHMM(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
