package marvin

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	qt "github.com/frankban/quicktest"
)

func TestNewEntryDefaults(t *testing.T) {
	c := qt.New(t)
	e := NewEntry("hello", "", "")
	c.Assert(e.LogType, qt.Equals, "Info")
	c.Assert(e.Sender, qt.Equals, "")
	c.Assert(e.Message, qt.Equals, "hello")

	e = NewEntry("boom", "pico1", "Error")
	c.Assert(e.LogType, qt.Equals, "Error")
	c.Assert(e.Sender, qt.Equals, "pico1")
}

func TestDeviceBodyKeys(t *testing.T) {
	c := qt.New(t)
	b, err := json.Marshal(NewEntry("m", "s", ""))
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, `{"logType":"Info","Sender":"s","Message":"m"}`)
}

func TestLoadEntry(t *testing.T) {
	c := qt.New(t)
	e := LoadEntry(`{"logType":"Warning","Sender":"Pico%20W","Message":"Caf%E9%20open"}`)
	c.Assert(e.LogType, qt.Equals, "Warning")
	c.Assert(e.Sender, qt.Equals, "Pico W")
	c.Assert(e.Message, qt.Equals, "Café open")
}

func TestLoadEntryCaseInsensitive(t *testing.T) {
	c := qt.New(t)
	e := LoadEntry(`{"LOGTYPE":"Debug","sender":"a","message":"b"}`)
	c.Assert(e.LogType, qt.Equals, "Debug")
	c.Assert(e.Sender, qt.Equals, "a")
	c.Assert(e.Message, qt.Equals, "b")
}

func TestLoadEntryFallback(t *testing.T) {
	c := qt.New(t)
	for _, raw := range []string{"just text", `"quoted"`, "null", "{broken"} {
		e := LoadEntry(raw)
		c.Assert(e.Message, qt.Equals, raw)
		c.Assert(e.LogType, qt.Equals, DefaultLogType)
	}
}

func TestLoadEntryEmptyLogType(t *testing.T) {
	c := qt.New(t)
	e := LoadEntry(`{"logType":"","Message":"x"}`)
	c.Assert(e.LogType, qt.Equals, DefaultLogType)
}

func TestLoadEntryDateWithoutZone(t *testing.T) {
	c := qt.New(t)
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	c.Assert(err, qt.IsNil)

	e := LoadEntryIn(`{"logType":"Warning","Sender":"pico","Message":"Caf%E9","LogDate":"2024-07-26T14:54:28"}`, stockholm)
	c.Assert(e.LogType, qt.Equals, "Warning")
	c.Assert(e.Sender, qt.Equals, "pico")
	c.Assert(e.Message, qt.Equals, "Café")
	c.Assert(e.LogDate, qt.Not(qt.IsNil))
	c.Assert(e.LogDate.Equal(time.Date(2024, 7, 26, 12, 54, 28, 0, time.UTC)), qt.IsTrue)
}

func TestLoadEntryDateForms(t *testing.T) {
	c := qt.New(t)
	want := time.Date(2024, 7, 26, 14, 54, 28, 0, time.UTC)
	for _, date := range []string{
		"2024-07-26T14:54:28Z",
		"2024-07-26T16:54:28+02:00",
		"2024-07-26T14:54:28",
		"2024-07-26 14:54:28",
		"2024-07-26T14:54:28.0000000",
	} {
		e := LoadEntryIn(`{"Message":"m","LogDate":"`+date+`"}`, time.UTC)
		c.Assert(e.LogDate, qt.Not(qt.IsNil), qt.Commentf("%s", date))
		c.Assert(e.LogDate.Equal(want), qt.IsTrue, qt.Commentf("%s", date))
	}
}

func TestLoadEntryBadDateKeepsEntry(t *testing.T) {
	c := qt.New(t)
	for _, date := range []string{`"yesterday"`, `12345`, `null`, `{}`} {
		e := LoadEntry(`{"logType":"Error","Sender":"pico","Message":"a%20b","LogDate":` + date + `}`)
		c.Assert(e.LogDate, qt.IsNil)
		c.Assert(e.LogType, qt.Equals, "Error")
		c.Assert(e.Sender, qt.Equals, "pico")
		c.Assert(e.Message, qt.Equals, "a b")
	}
}

func TestEntryJSONRoundTrip(t *testing.T) {
	c := qt.New(t)
	when := time.Date(2024, 7, 26, 14, 54, 28, 0, time.UTC)
	b, err := json.Marshal(Entry{LogType: "Info", Message: "x", LogDate: &when, IPAddress: "10.0.0.2"})
	c.Assert(err, qt.IsNil)

	var e Entry
	c.Assert(json.Unmarshal(b, &e), qt.IsNil)
	c.Assert(e.LogDate.Equal(when), qt.IsTrue)
	c.Assert(e.IPAddress, qt.Equals, "10.0.0.2")

	var entries []Entry
	c.Assert(json.Unmarshal([]byte(`[{"Message":"a","LogDate":"2024-07-26T14:54:28"}]`), &entries), qt.IsNil)
	c.Assert(entries[0].LogDate, qt.Not(qt.IsNil))
}

func TestEntryString(t *testing.T) {
	c := qt.New(t)
	when := time.Date(2024, 7, 26, 14, 54, 28, 0, time.UTC)
	e := Entry{LogType: "Info", Sender: "pico", Message: "up", LogDate: &when}
	c.Assert(e.DateString(), qt.Equals, "2024-07-26 14:54:28")
	c.Assert(e.String(), qt.Equals, "[2024-07-26 14:54:28] [Info] pico: up")
	c.Assert(Entry{LogType: "Info", Message: "x"}.String(), qt.Equals, "[Info] x")
}

func TestValidSender(t *testing.T) {
	c := qt.New(t)
	c.Assert(ValidSender("PythonMachine1"), qt.IsTrue)
	c.Assert(ValidSender("pico-w_2"), qt.IsTrue)
	c.Assert(ValidSender(""), qt.IsFalse)
	c.Assert(ValidSender("has space"), qt.IsFalse)
}

func TestGetEnv(t *testing.T) {
	c := qt.New(t)
	c.Setenv("MARVIN_TEST_TIMEOUT", "5s")
	c.Setenv("MARVIN_TEST_BAD", "soon")
	c.Setenv("MARVIN_TEST_N", "7")
	c.Assert(GetEnv("MARVIN_TEST_UNSET", "dflt"), qt.Equals, "dflt")
	c.Assert(GetEnvDuration("MARVIN_TEST_TIMEOUT", time.Second), qt.Equals, 5*time.Second)
	c.Assert(GetEnvDuration("MARVIN_TEST_BAD", time.Second), qt.Equals, time.Second)
	c.Assert(GetEnvInt("MARVIN_TEST_N", 1), qt.Equals, 7)
}
