package tabs

import "testing"

// TestSelect_ExactlyOneActive verifies the transition invariant for every panel.
func TestSelect_ExactlyOneActive(t *testing.T) {
	for _, def := range Panels {
		st := Select(def.Key, true)
		active := 0
		for _, p := range st.Panels {
			if p.Active {
				active++
				if p.Hidden {
					t.Errorf("%s: active panel is hidden", def.Key)
				}
			} else if !p.Hidden {
				t.Errorf("%s: inactive panel %s is visible", def.Key, p.Key)
			}
		}
		if active != 1 {
			t.Errorf("Select(%q) active = %d, want 1", def.Key, active)
		}
		if st.Active != def.Key {
			t.Errorf("Select(%q).Active = %q", def.Key, st.Active)
		}
	}
}

// TestSelect_Fallbacks verifies unknown and unauthorised keys select the default.
func TestSelect_Fallbacks(t *testing.T) {
	tests := []struct {
		key        string
		privileged bool
		want       string
	}{
		{"", false, Capsule},
		{"nope", false, Capsule},
		{Admin, false, Capsule},
		{Admin, true, Admin},
		{Quiz, false, Quiz},
	}
	for _, tt := range tests {
		if got := Select(tt.key, tt.privileged).Active; got != tt.want {
			t.Errorf("Select(%q, %v) = %q, want %q", tt.key, tt.privileged, got, tt.want)
		}
	}
}

// TestSelect_HidesPrivilegedPanel verifies the admin panel is omitted for non-privileged viewers.
func TestSelect_HidesPrivilegedPanel(t *testing.T) {
	for _, p := range Select(Capsule, false).Panels {
		if p.Key == Admin {
			t.Error("admin panel present for non-privileged viewer")
		}
	}
	if n := len(Select(Capsule, true).Panels); n != len(Panels) {
		t.Errorf("privileged panel count = %d, want %d", n, len(Panels))
	}
}

func TestStrategy_Href(t *testing.T) {
	if got := StrategyTabs.Href(Quiz); got != "/?tab=quiz" {
		t.Errorf("tabs href = %q", got)
	}
	if got := StrategyTabs.Href(Capsule); got != "/" {
		t.Errorf("tabs default href = %q", got)
	}
	if got := StrategyPages.Href(Quiz); got != "/p/quiz" {
		t.Errorf("pages href = %q", got)
	}
	if StrategyTabs.RequiresLogin() || !StrategyPages.RequiresLogin() {
		t.Error("unexpected RequiresLogin")
	}
}

func TestParseStrategy(t *testing.T) {
	if _, err := ParseStrategy("spa"); err != ErrUnknownStrategy {
		t.Errorf("ParseStrategy(spa) err = %v", err)
	}
	if s, err := ParseStrategy("pages"); err != nil || s != StrategyPages {
		t.Errorf("ParseStrategy(pages) = %q, %v", s, err)
	}
}
