// Package testutils provides deterministic id and timestamp generators for
// assistdesk testing. In test mode the generators produce stable, sortable
// values; in production they defer to crypto-random UUIDs and the wall clock.
package testutils

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TestModer reports whether deterministic test mode is enabled. The state
// store satisfies this interface.
type TestModer interface {
	IsTestMode() bool
}

var (
	idCounter uint64
	idMutex   sync.Mutex

	timeCounter int64
	timeMutex   sync.Mutex
)

// GenerateUUID generates a UUID that is deterministic in test mode but random
// in production. Test-mode values look like
// 00000001-0000-4000-8000-000000000001, incrementing per call.
func GenerateUUID(m TestModer) string {
	if m != nil && m.IsTestMode() {
		return deterministicUUID()
	}
	return uuid.New().String()
}

// GetCurrentTime returns the current time, deterministic in test mode.
// Test-mode values increment by one second per call starting from
// 2025-01-01T00:00:00Z so insertion order and timestamp order agree.
func GetCurrentTime(m TestModer) time.Time {
	if m != nil && m.IsTestMode() {
		return deterministicTime()
	}
	return time.Now()
}

// ResetCounters rewinds the deterministic generators. Tests call this in
// their setup so values are stable regardless of execution order.
func ResetCounters() {
	idMutex.Lock()
	idCounter = 0
	idMutex.Unlock()

	timeMutex.Lock()
	timeCounter = 0
	timeMutex.Unlock()
}

func deterministicUUID() string {
	idMutex.Lock()
	defer idMutex.Unlock()
	idCounter++
	return fmt.Sprintf("%08d-0000-4000-8000-%012d", idCounter, idCounter)
}

func deterministicTime() time.Time {
	timeMutex.Lock()
	defer timeMutex.Unlock()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t := base.Add(time.Duration(timeCounter) * time.Second)
	timeCounter++
	return t
}
