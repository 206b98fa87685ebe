package marvin

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/merliot/marvin/percent"
)

// DefaultLogType is used when an entry has no log type
const DefaultLogType = "Info"

// Entry is a log record as sent by a device and stored by the log API.  A
// device only fills LogType, Sender and Message; LogDate and IPAddress are
// set by the receiving server.
type Entry struct {
	Id        int        `json:"-"`
	LogType   string     `json:"logType"`
	Sender    string     `json:"Sender"`
	Message   string     `json:"Message"`
	LogDate   *time.Time `json:"LogDate,omitempty"`
	IPAddress string     `json:"IPAddress,omitempty"`
}

// NewEntry returns an entry for message.  An empty logType becomes
// DefaultLogType; an empty sender is left for the submitter to fill.
func NewEntry(message, sender, logType string) Entry {
	e := Entry{LogType: logType, Sender: sender, Message: message}
	if e.LogType == "" {
		e.LogType = DefaultLogType
	}
	return e
}

// LoadEntry parses an entry from a device.  JSON keys match
// case-insensitively.  Message and Sender are percent-decoded as
// ISO-8859-1.  Text that is not a JSON object becomes the message of a
// new entry.  LogDate values without a zone are read in local time.
func LoadEntry(raw string) Entry {
	return LoadEntryIn(raw, time.Local)
}

// LoadEntryIn is LoadEntry with LogDate values without a zone read in loc
func LoadEntryIn(raw string, loc *time.Location) Entry {
	e, err := UnmarshalEntry([]byte(raw), loc)
	if err != nil || strings.TrimSpace(raw) == "null" {
		return Entry{LogType: DefaultLogType, Message: raw}
	}
	e.Message = percent.Decode(e.Message)
	e.Sender = percent.Decode(e.Sender)
	if e.LogType == "" {
		e.LogType = DefaultLogType
	}
	return e
}

// UnmarshalEntry decodes a JSON entry without percent-decoding.  A LogDate
// that is not a date string is dropped; the rest of the entry is kept.
func UnmarshalEntry(data []byte, loc *time.Location) (Entry, error) {
	var w struct {
		LogType   string          `json:"logType"`
		Sender    string          `json:"Sender"`
		Message   string          `json:"Message"`
		LogDate   json.RawMessage `json:"LogDate"`
		IPAddress string          `json:"IPAddress"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return Entry{}, err
	}
	e := Entry{
		LogType:   w.LogType,
		Sender:    w.Sender,
		Message:   w.Message,
		IPAddress: w.IPAddress,
	}
	var date string
	if len(w.LogDate) > 0 && json.Unmarshal(w.LogDate, &date) == nil {
		if t, err := ParseDate(date, loc); err == nil {
			e.LogDate = &t
		}
	}
	return e, nil
}

// UnmarshalJSON decodes e with UnmarshalEntry in local time
func (e *Entry) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}
	v, err := UnmarshalEntry(data, time.Local)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses RFC 3339, or an ISO date and time without a zone in loc.
// Fractional seconds are accepted in every form.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, perr := time.ParseInLocation(layout, s, loc); perr == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// DateString formats LogDate as "2006-01-02 15:04:05", or "" if unset.
func (e Entry) DateString() string {
	if e.LogDate == nil {
		return ""
	}
	return e.LogDate.Format("2006-01-02 15:04:05")
}

func (e Entry) String() string {
	var b strings.Builder
	if d := e.DateString(); d != "" {
		b.WriteString("[" + d + "] ")
	}
	b.WriteString("[" + e.LogType + "] ")
	if e.Sender != "" {
		b.WriteString(e.Sender + ": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// ValidSender reports whether s is usable as a device hostname: a
// non-empty string with only [a-z], [A-Z], [0-9], underscore or hyphen
// characters.
func ValidSender(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			(r != '_') && (r != '-') {
			return false
		}
	}
	return len(s) > 0
}
