package testutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubModer struct{ enabled bool }

func (s stubModer) IsTestMode() bool { return s.enabled }

func TestGenerateUUID_Deterministic(t *testing.T) {
	ResetCounters()
	m := stubModer{enabled: true}

	assert.Equal(t, "00000001-0000-4000-8000-000000000001", GenerateUUID(m))
	assert.Equal(t, "00000002-0000-4000-8000-000000000002", GenerateUUID(m))

	ResetCounters()
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", GenerateUUID(m))
}

func TestGenerateUUID_Random(t *testing.T) {
	a := GenerateUUID(stubModer{enabled: false})
	b := GenerateUUID(stubModer{enabled: false})
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestGenerateUUID_NilModer(t *testing.T) {
	assert.Len(t, GenerateUUID(nil), 36)
}

func TestGetCurrentTime_Deterministic(t *testing.T) {
	ResetCounters()
	m := stubModer{enabled: true}

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, base, GetCurrentTime(m))
	assert.Equal(t, base.Add(time.Second), GetCurrentTime(m))
	assert.Equal(t, base.Add(2*time.Second), GetCurrentTime(m))
}

func TestGetCurrentTime_WallClock(t *testing.T) {
	got := GetCurrentTime(stubModer{enabled: false})
	assert.WithinDuration(t, time.Now(), got, time.Minute)
}
