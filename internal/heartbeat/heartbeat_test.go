package heartbeat

import (
	"testing"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/config"
)

func TestFilterAckSuppressesBareSentinel(t *testing.T) {
	l := &Loop{cfg: &config.HeartbeatConfig{}}
	_, suppress := l.filterAck("HEARTBEAT_OK")
	if !suppress {
		t.Error("expected bare sentinel to be suppressed")
	}
}

func TestFilterAckForwardsLongRemainder(t *testing.T) {
	l := &Loop{cfg: &config.HeartbeatConfig{AckMaxChars: 5}}
	msg, suppress := l.filterAck("HEARTBEAT_OK this is a longer remainder than five chars")
	if suppress {
		t.Error("expected long remainder to be forwarded")
	}
	if msg == "" {
		t.Error("expected non-empty forwarded message")
	}
}

func TestInActiveHoursWindow(t *testing.T) {
	ah := &config.ActiveHoursConfig{Start: "09:00", End: "17:00", Timezone: "UTC"}
	inside := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	outside := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)
	if !inActiveHours(ah, inside) {
		t.Error("expected 12:00 to be within 09:00-17:00")
	}
	if inActiveHours(ah, outside) {
		t.Error("expected 03:00 to be outside 09:00-17:00")
	}
}

func TestInActiveHoursWrapsMidnight(t *testing.T) {
	ah := &config.ActiveHoursConfig{Start: "22:00", End: "06:00", Timezone: "UTC"}
	late := time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)
	if !inActiveHours(ah, late) {
		t.Error("expected 23:00 to be within 22:00-06:00 wrap window")
	}
}
