package geometry

import (
	"image"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		arg       string
		want      Info
		wantFlags Flags
	}{
		{"3", Info{Rho: 3}, RhoValue},
		{"0x2", Info{Rho: 0, Sigma: 2}, RhoValue | SigmaValue},
		{"3x1.5", Info{Rho: 3, Sigma: 1.5}, RhoValue | SigmaValue},
		{"300x200+10+20", Info{Rho: 300, Sigma: 200, Xi: 10, Psi: 20},
			RhoValue | SigmaValue | XiValue | PsiValue},
		{"300x200+10-5", Info{Rho: 300, Sigma: 200, Xi: 10, Psi: -5},
			RhoValue | SigmaValue | XiValue | PsiValue},
		{"+10+20", Info{Xi: 10, Psi: 20}, XiValue | PsiValue},
		{"50%", Info{Rho: 50}, RhoValue | PercentValue},
		{"100x50!", Info{Rho: 100, Sigma: 50}, RhoValue | SigmaValue | AspectValue},
		{"100x50^", Info{Rho: 100, Sigma: 50}, RhoValue | SigmaValue | MinimumValue},
		{"100>", Info{Rho: 100}, RhoValue | GreaterValue},
		{"100<", Info{Rho: 100}, RhoValue | LessValue},
		{"x200", Info{Sigma: 200}, SigmaValue},
		{"-90", Info{Rho: -90}, RhoValue},
		{"1e2x1e1", Info{Rho: 100, Sigma: 10}, RhoValue | SigmaValue},
		{"1.5e+2", Info{Rho: 150}, RhoValue},
		{"", Info{}, 0},
		{"bogus", Info{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			info, flags := Parse(tt.arg)
			if info != tt.want {
				t.Errorf("Parse(%q) info: got %+v, want %+v", tt.arg, info, tt.want)
			}
			if flags != tt.wantFlags {
				t.Errorf("Parse(%q) flags: got %b, want %b", tt.arg, flags, tt.wantFlags)
			}
		})
	}
}

func TestParseRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 100)

	tests := []struct {
		name  string
		arg   string
		wantW int
		wantH int
	}{
		{"fit preserves aspect", "100x100", 100, 50},
		{"cover fills box", "100x100^", 200, 100},
		{"force exact", "100x100!", 100, 100},
		{"percent", "50%", 100, 50},
		{"width only keeps aspect", "100", 100, 50},
		{"height only keeps aspect", "x50", 100, 50},
		{"only-shrink leaves smaller", "400x400>", 200, 100},
		{"only-enlarge leaves larger", "100x100<", 200, 100},
		{"only-enlarge grows smaller", "400x400<", 400, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rect, _, err := ParseRegion(tt.arg, bounds)
			if err != nil {
				t.Fatalf("ParseRegion(%q) failed: %v", tt.arg, err)
			}
			if rect.Dx() != tt.wantW || rect.Dy() != tt.wantH {
				t.Errorf("ParseRegion(%q): got %dx%d, want %dx%d",
					tt.arg, rect.Dx(), rect.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestParseRegion_Offsets(t *testing.T) {
	rect, _, err := ParseRegion("50x50!+10+20", image.Rect(0, 0, 100, 100))
	if err != nil {
		t.Fatalf("ParseRegion failed: %v", err)
	}
	if rect.Min.X != 10 || rect.Min.Y != 20 {
		t.Errorf("offset: got %v, want (10,20)", rect.Min)
	}
}

func TestParseRegion_Invalid(t *testing.T) {
	for _, arg := range []string{"", "bogus", "+10+20"} {
		if _, _, err := ParseRegion(arg, image.Rect(0, 0, 100, 100)); err == nil {
			t.Errorf("ParseRegion(%q) should fail", arg)
		}
	}
}

func TestParseSceneList(t *testing.T) {
	tests := []struct {
		arg    string
		length int
		want   []int
	}{
		{"0", 4, []int{0}},
		{"-1", 4, []int{3}},
		{"0,2", 4, []int{0, 2}},
		{"1-3", 4, []int{1, 2, 3}},
		{"3-1", 4, []int{3, 2, 1}},
		{"0,-1", 4, []int{0, 3}},
		{"-2--1", 4, []int{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseSceneList(tt.arg, tt.length)
			if err != nil {
				t.Fatalf("ParseSceneList(%q, %d) failed: %v", tt.arg, tt.length, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSceneList(%q): got %v, want %v", tt.arg, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSceneList(%q): got %v, want %v", tt.arg, got, tt.want)
					break
				}
			}
		})
	}
}

func TestParseSceneList_Invalid(t *testing.T) {
	tests := []struct {
		arg    string
		length int
	}{
		{"", 4},
		{"4", 4},
		{"-5", 4},
		{"0-9", 4},
		{"abc", 4},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			if _, err := ParseSceneList(tt.arg, tt.length); err == nil {
				t.Errorf("ParseSceneList(%q, %d) should fail", tt.arg, tt.length)
			}
		})
	}
}
