package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from
// reader. The trailing newline is trimmed. If EOF occurs after some input
// was read, the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetOptionalText is GetSimpleText with a default: an empty answer keeps
// the current value. Used by the edit flows so the user only retypes what
// changes.
func GetOptionalText(reader *bufio.Reader, prompt, current string, w io.Writer) (string, error) {
	got, err := GetSimpleText(reader, fmt.Sprintf("%s [%s]", prompt, current), w)
	if err != nil {
		return "", err
	}
	if got == "" {
		return current, nil
	}
	return got, nil
}

// GetPassword prints a password prompt to w and reads a password from the
// user's terminal without echo. A newline is printed after the read to keep
// the UI tidy.
func GetPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// GetAmount reads a positive decimal amount.
func GetAmount(reader *bufio.Reader, prompt string, w io.Writer) (decimal.Decimal, error) {
	got, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return decimal.Zero, err
	}
	amount, err := decimal.NewFromString(got)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a valid amount: %q", got)
	}
	return amount, nil
}

// GetDate reads a calendar date in YYYY-MM-DD form. An empty answer means
// today.
func GetDate(reader *bufio.Reader, prompt string, w io.Writer) (time.Time, error) {
	got, err := GetSimpleText(reader, prompt+" (YYYY-MM-DD, empty for today)", w)
	if err != nil {
		return time.Time{}, err
	}
	if got == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", got)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a valid date: %q", got)
	}
	return date, nil
}

func decimalFromInput(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a valid amount: %q", s)
	}
	return amount, nil
}

func dateFromInput(s string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a valid date: %q", s)
	}
	return date, nil
}
