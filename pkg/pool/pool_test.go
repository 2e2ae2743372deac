package pool

import (
	"testing"
)

func TestGetFloat32Length(t *testing.T) {
	for _, n := range []int{0, 1, 100, 4096} {
		s := GetFloat32(n)
		if len(s) != n {
			t.Errorf("GetFloat32(%d) len = %d", n, len(s))
		}
		PutFloat32(s)
	}
}

func TestGetFloat64Length(t *testing.T) {
	for _, n := range []int{0, 1, 100, 4096} {
		s := GetFloat64(n)
		if len(s) != n {
			t.Errorf("GetFloat64(%d) len = %d", n, len(s))
		}
		PutFloat64(s)
	}
}

func TestDisabledPooling(t *testing.T) {
	old := globalConfig
	defer Configure(old)

	Configure(Config{Enabled: false})
	if IsEnabled() {
		t.Error("IsEnabled() should be false after disabling")
	}
	s := GetFloat32(8)
	if len(s) != 8 {
		t.Errorf("disabled pool still must return len 8, got %d", len(s))
	}
	PutFloat32(s) // no-op, must not panic
}

func TestOversizeNotRetained(t *testing.T) {
	old := globalConfig
	defer Configure(old)

	Configure(Config{Enabled: true, MaxLen: 16})
	big := GetFloat64(1024)
	PutFloat64(big) // above MaxLen, dropped

	small := GetFloat64(4)
	if len(small) != 4 {
		t.Errorf("len = %d, want 4", len(small))
	}
	PutFloat64(small)
}
