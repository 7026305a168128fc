package ui

import "testing"

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")

	t.Setenv("SWITCHBOARD_DARK_MODE", "1")
	dark := DetectTheme()
	if !dark.IsDark {
		t.Fatalf("expected dark theme when SWITCHBOARD_DARK_MODE=1")
	}

	t.Setenv("SWITCHBOARD_DARK_MODE", "")
	light := DetectTheme()
	if light.IsDark {
		t.Fatalf("expected light theme when SWITCHBOARD_DARK_MODE is unset")
	}
}

func TestDetectThemeColorFgBg(t *testing.T) {
	t.Setenv("SWITCHBOARD_DARK_MODE", "")

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme for black background")
	}

	t.Setenv("COLORFGBG", "0;15")
	if DetectTheme().IsDark {
		t.Fatalf("expected light theme for white background")
	}
}

func TestConfidenceStyleBands(t *testing.T) {
	s := DefaultStyles()

	high := s.Confidence(0.85)
	low := s.Confidence(0.2)
	if high.GetForeground() == low.GetForeground() {
		t.Fatalf("high and low confidence should render differently")
	}
	mid := s.Confidence(0.5)
	if mid.GetForeground() == high.GetForeground() {
		t.Fatalf("mid band should not reuse the high band color")
	}
}
