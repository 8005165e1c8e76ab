package validation

import "unicode/utf8"

// Level is a coarse password strength tier.
type Level int

const (
	StrengthNone Level = iota
	StrengthWeak
	StrengthMedium
	StrengthStrong
)

func (l Level) String() string {
	switch l {
	case StrengthWeak:
		return "weak"
	case StrengthMedium:
		return "medium"
	case StrengthStrong:
		return "strong"
	}
	return "none"
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Strength is the scored result shown next to a password field.
type Strength struct {
	Level Level  `json:"level"`
	Score int    `json:"score"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// PasswordStrength scores five checks: length >= 8, lowercase, uppercase,
// digit and a special character from @$!%*?&.  Fewer than two satisfied
// checks is weak, two or three is medium, four or five is strong.
func PasswordStrength(password string) Strength {
	if password == "" {
		return Strength{Level: StrengthNone, Label: "请输入密码"}
	}
	checks := []bool{
		utf8.RuneCountInString(password) >= 8,
		lowerRe.MatchString(password),
		upperRe.MatchString(password),
		digitRe.MatchString(password),
		specialRe.MatchString(password),
	}
	score := 0
	for _, ok := range checks {
		if ok {
			score++
		}
	}
	switch {
	case score < 2:
		return Strength{Level: StrengthWeak, Score: score, Label: "弱", Color: "red"}
	case score < 4:
		return Strength{Level: StrengthMedium, Score: score, Label: "中等", Color: "yellow"}
	default:
		return Strength{Level: StrengthStrong, Score: score, Label: "强", Color: "green"}
	}
}
