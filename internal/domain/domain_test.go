package domain

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:30", 510, false},
		{"23:59", 1439, false},
		{" 09:15 ", 555, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"9", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) = %d, want error", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseClock(%q) = %d, %v, want %d", tc.in, got, err, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{510, "08:30"},
		{1439, "23:59"},
		{1500, "01:00"}, // past midnight wraps
		{-5, "00:00"},
	}
	for _, tc := range cases {
		if got := FormatClock(tc.in); got != tc.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestColorForRoute(t *testing.T) {
	if got := ColorForRoute(1); got != RouteColors[0] {
		t.Errorf("route 1 color = %q", got)
	}
	if got := ColorForRoute(8); got != RouteColors[7] {
		t.Errorf("route 8 color = %q", got)
	}
	// Palette wraps after eight routes.
	if got := ColorForRoute(9); got != RouteColors[0] {
		t.Errorf("route 9 color = %q", got)
	}
	if got := ColorForRoute(0); got != RouteColors[0] {
		t.Errorf("route 0 color = %q", got)
	}
}

func TestDriverConstraintSpecResolve(t *testing.T) {
	d := Driver{MaxStops: 10, MaxRouteDurationMinutes: 90}

	stops, dur := DriverConstraintSpec{}.Resolve(d)
	if stops != 10 || dur != 90 {
		t.Errorf("driver fallback = %d, %d", stops, dur)
	}

	stops, dur = DriverConstraintSpec{MaxStops: 4, MaxRouteDurationMinutes: 45}.Resolve(d)
	if stops != 4 || dur != 45 {
		t.Errorf("spec override = %d, %d", stops, dur)
	}

	stops, dur = DriverConstraintSpec{}.Resolve(Driver{})
	if stops != DefaultMaxStops || dur != DefaultMaxRouteDuration {
		t.Errorf("defaults = %d, %d", stops, dur)
	}
}

func TestCoordinatesKeyRounding(t *testing.T) {
	a := Coordinates{Lat: 40.712345678, Lon: -74.006789123}
	b := Coordinates{Lat: 40.712349999, Lon: -74.006790001}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	c := Coordinates{Lat: 40.7129, Lon: -74.0068}
	if a.Key() == c.Key() {
		t.Errorf("distinct points share key %q", a.Key())
	}
}
