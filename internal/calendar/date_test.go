package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateOf_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	morning := time.Date(2025, 9, 13, 0, 5, 0, 0, loc)
	evening := time.Date(2025, 9, 13, 23, 59, 59, 0, loc)
	if !DateOf(morning).Equal(DateOf(evening)) {
		t.Fatalf("expected same calendar day, got %v and %v", DateOf(morning), DateOf(evening))
	}
}

func TestDate_Ordering(t *testing.T) {
	a := New(2025, time.December, 31)
	b := a.AddDays(1)
	if b != New(2026, time.January, 1) {
		t.Fatalf("AddDays rollover: got %v", b)
	}
	if !a.Before(b) || a.After(b) || !b.After(a) {
		t.Errorf("ordering broken for %v / %v", a, b)
	}
	if got := a.DaysUntil(b.AddDays(6)); got != 7 {
		t.Errorf("DaysUntil = %d, want 7", got)
	}
}

func TestParseAndString(t *testing.T) {
	d, err := Parse("2025-09-03")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2025-09-03" {
		t.Errorf("String() = %q", d.String())
	}
	if _, err := Parse("2025/09/03"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestDate_JSONRoundTripInStruct(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}
	var p payload
	if err := json.Unmarshal([]byte(`{"date":"2025-09-15"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Date != New(2025, time.September, 15) {
		t.Fatalf("got %v", p.Date)
	}
	b, _ := json.Marshal(p)
	if string(b) != `{"date":"2025-09-15"}` {
		t.Errorf("marshal = %s", b)
	}
}

func TestFormatChinese(t *testing.T) {
	d := New(2025, time.September, 13) // Saturday
	if got := FormatChinese(d); got != "2025年9月13日 周六" {
		t.Errorf("FormatChinese = %q", got)
	}
}

func TestRelativeLabel(t *testing.T) {
	now := time.Date(2025, 9, 13, 22, 0, 0, 0, time.UTC)
	cases := []struct {
		d    Date
		want string
	}{
		{New(2025, 9, 13), "今天"},
		{New(2025, 9, 14), "明天"},
		{New(2025, 9, 15), "9月15日 周一"},
	}
	for _, tc := range cases {
		if got := RelativeLabel(tc.d, now); got != tc.want {
			t.Errorf("RelativeLabel(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestUpcomingDates(t *testing.T) {
	now := time.Date(2025, 9, 29, 10, 0, 0, 0, time.UTC)
	got := UpcomingDates(now, 7)
	if len(got) != 7 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0] != New(2025, 9, 29) || got[6] != New(2025, 10, 5) {
		t.Errorf("unexpected range %v..%v", got[0], got[6])
	}
}

func TestIsTimePassed(t *testing.T) {
	now := time.Date(2025, 9, 13, 14, 35, 0, 0, time.UTC)
	today := Today(now)
	if !IsTimePassed(today, "14:00", now) {
		t.Error("14:00 should have passed at 14:35")
	}
	if !IsTimePassed(today, "14:35", now) {
		t.Error("equal minute counts as passed")
	}
	if IsTimePassed(today, "15:00", now) {
		t.Error("15:00 has not passed")
	}
	if IsTimePassed(today.AddDays(1), "09:00", now) {
		t.Error("other days never have passed times")
	}
}
