package clean

import (
	"errors"
	"testing"
	"time"
)

func TestNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234", 1234, true},
		{"12", 12, true},
		{"  5 ", 5, true},
		{"3,594,000", 3594000, true},
		{"12.5", 12.5, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := Number(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("Number(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCount(t *testing.T) {
	t.Parallel()

	if n, ok := Count("1,234"); !ok || n != 1234 {
		t.Fatalf("Count(1,234) = (%d, %v)", n, ok)
	}
	for _, bad := range []string{"12.5", "-3", "N/A", ""} {
		if _, ok := Count(bad); ok {
			t.Errorf("Count(%q) unexpectedly parsed", bad)
		}
	}
}

func TestDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"20230115", "2023-01-15", true},
		{"2023-01-15", "2023-01-15", true},
		{"2023.01.15", "2023-01-15", true},
		{"2023/01/15", "2023-01-15", true},
		{"2023년 1월", "2023-01-01", true},
		{"2023년 12월", "2023-12-01", true},
		{"99999999", "", false},
		{"not a date", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := Date(c.in)
		if ok != c.ok {
			t.Errorf("Date(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != c.want {
			t.Errorf("Date(%q) = %s, want %s", c.in, got.Format("2006-01-02"), c.want)
		}
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	if got := Text("  서울   강남구\t테헤란로 "); got != "서울 강남구 테헤란로" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestPhone(t *testing.T) {
	t.Parallel()

	if got := Phone("02) 123-4567 (대표)"); got != "02123-4567" {
		t.Fatalf("Phone() = %q", got)
	}
}

func TestGender(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"남자":   "남성",
		"여자":   "여성",
		"전체":   "합계",
		"남성":   "남성",
		" 남 자 ": "남성",
	}
	for in, want := range cases {
		if got := Gender(in); got != want {
			t.Errorf("Gender(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBounds(t *testing.T) {
	t.Parallel()

	b := KoreaServiceCenter

	lat, lon, ok := b.Coords("37.5665", "126.9780")
	if !ok || lat != 37.5665 || lon != 126.9780 {
		t.Fatalf("in-bounds pair rejected: (%v, %v, %v)", lat, lon, ok)
	}

	// Boundary values are inclusive.
	if _, _, ok := b.Coords("33", "124"); !ok {
		t.Fatal("boundary pair rejected")
	}

	for _, c := range [][2]string{
		{"52.52", "13.40"}, // far outside
		{"40.0", "127.0"},  // lat above box
		{"37.5", "133.0"},  // lon above box
		{"", "126.9"},      // unparseable lat
		{"37.5", "N/A"},    // unparseable lon
	} {
		if _, _, ok := b.Coords(c[0], c[1]); ok {
			t.Errorf("Coords(%q, %q) unexpectedly accepted", c[0], c[1])
		}
	}

	// The wide box accepts what the service-center box rejects.
	if _, _, ok := KoreaWide.Coords("41.0", "128.0"); !ok {
		t.Fatal("KoreaWide rejected a pair inside its box")
	}
}

func TestInferPeriodFromFilename(t *testing.T) {
	t.Parallel()

	got, err := InferPeriod("2023년_01월_자동차_등록자료_통계.xlsx", "")
	if err != nil {
		t.Fatalf("InferPeriod: %v", err)
	}
	want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("InferPeriod = %s, want %s", got, want)
	}
}

func TestInferPeriodFromHeadText(t *testing.T) {
	t.Parallel()

	got, err := InferPeriod("stats.xlsx", "조회년월: 2023.01")
	if err != nil {
		t.Fatalf("InferPeriod: %v", err)
	}
	if got.Year() != 2023 || got.Month() != time.January || got.Day() != 1 {
		t.Fatalf("InferPeriod = %s", got)
	}
}

func TestInferPeriodNotFound(t *testing.T) {
	t.Parallel()

	_, err := InferPeriod("stats.xlsx", "no period anywhere")
	var pnf *PeriodNotFoundError
	if !errors.As(err, &pnf) {
		t.Fatalf("expected *PeriodNotFoundError, got %v", err)
	}
}
