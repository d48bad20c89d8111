package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalance(-balance)
	}

	str := strconv.FormatInt(balance, 10)

	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatUptime renders a duration as "3 days, 4:05:06" truncated to whole seconds
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	clock := fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	}
	return fmt.Sprintf("%d days, %s", days, clock)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

func ChannelMention(id int64) string { return fmt.Sprintf("<#%d>", id) }
func UserMention(id int64) string { return fmt.Sprintf("<@%d>", id) }
func RoleMention(id int64) string { return fmt.Sprintf("<@&%d>", id) }

// OptionalChannel renders a channel reference or the "Not set" label
func OptionalChannel(id *int64) string {
	if id == nil {
		return NotSet
	}
	return ChannelMention(*id)
}

// OptionalRole renders a role reference or the "Not set" label
func OptionalRole(id *int64) string {
	if id == nil {
		return NotSet
	}
	return RoleMention(*id)
}

// TitleCase upper-cases the first letter of name
func TitleCase(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ParseID converts a Discord snowflake string to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatID converts an int64 snowflake to string
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
