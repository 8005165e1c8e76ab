package validation

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidatePhone(t *testing.T) {
	cases := map[string]bool{
		"13812345678":  true,
		"19912345678":  true,
		"12812345678":  false,
		"1381234567":   false,
		"138123456789": false,
		"2381234567a":  false,
	}
	for in, want := range cases {
		if got := ValidatePhone(in); got != want {
			t.Errorf("ValidatePhone(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	cases := map[string]bool{
		"a@b.co":       true,
		"user@mail.cn": true,
		"no-at.cn":     false,
		"a@b":          false,
		"sp ace@b.com": false,
	}
	for in, want := range cases {
		if got := ValidateEmail(in); got != want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPasswordValidators(t *testing.T) {
	if !ValidatePassword("Abcdefg1") {
		t.Error("Abcdefg1 should pass basic validation")
	}
	if ValidatePassword("abcdefg1") {
		t.Error("missing uppercase should fail")
	}
	if ValidateStrongPassword("Abcdefg1") {
		t.Error("strong validation needs a special character")
	}
	if !ValidateStrongPassword("Abcdef1!") {
		t.Error("Abcdef1! should pass strong validation")
	}
	if ValidateStrongPassword("Abcdef1!#") {
		t.Error("# is outside the allowed charset")
	}
}

func TestLengthAndRange(t *testing.T) {
	if !Length("", 0, 10) || Length("", 1, 10) {
		t.Error("empty string only passes with min 0")
	}
	if !Length("美容预约", 2, 4) {
		t.Error("length counts runes")
	}
	if !Length("abcdef", 3, -1) {
		t.Error("negative max is unbounded")
	}
	if !NumberRange("5", 1, 10) || NumberRange("x", 1, 10) || NumberRange("11", 1, 10) {
		t.Error("NumberRange mismatch")
	}
}

func TestStrength_JSONUsesLevelName(t *testing.T) {
	b, err := json.Marshal(PasswordStrength("abc"))
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out["level"] != "weak" {
		t.Fatalf("level = %v", out["level"])
	}
}

func TestPasswordStrength_Tiers(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"", StrengthNone},
		{"abc", StrengthWeak},
		{"abcdefgh", StrengthMedium},
		{"abcdefg1", StrengthMedium},
		{"Abcdefg1", StrengthStrong},
		{"Abcdef1!", StrengthStrong},
	}
	for _, tc := range cases {
		if got := PasswordStrength(tc.in).Level; got != tc.want {
			t.Errorf("PasswordStrength(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPasswordStrength_AddingCheckNeverDecreases(t *testing.T) {
	bases := []string{"a", "abc", "abcdefgh", "abcd1234", "abcdefg!", "ab1!"}
	additions := []string{"A", "1", "!", "xxxxxxxx"}
	for _, base := range bases {
		before := PasswordStrength(base)
		for _, add := range additions {
			after := PasswordStrength(base + add)
			if after.Level < before.Level || after.Score < before.Score {
				t.Errorf("strength dropped: %q (%v) -> %q (%v)", base, before.Level, base+add, after.Level)
			}
		}
	}
}

func TestFormValidator_FirstFailingRuleWins(t *testing.T) {
	v := NewFormValidator().
		AddRule("email", Required, "请输入邮箱").
		AddRule("email", ValidateEmail, "邮箱格式不正确").
		AddRule("phone", ValidatePhone, "请输入正确的手机号码格式")

	err := v.Validate(map[string]string{"phone": "13812345678"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("errors.Is(ErrValidation) should match")
	}
	if verr.Fields["email"] != "请输入邮箱" {
		t.Errorf("email message = %q", verr.Fields["email"])
	}
	if _, ok := verr.Fields["phone"]; ok {
		t.Error("phone is valid and must not be reported")
	}

	if ok := v.ValidateField("email", "a@b.cn"); !ok || v.Error("email") != "" {
		t.Error("ValidateField should clear the email error")
	}
	if err := v.Validate(map[string]string{"email": "a@b.cn", "phone": "13812345678"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
