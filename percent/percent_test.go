package percent

import (
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSafeUnchanged(t *testing.T) {
	c := qt.New(t)
	for _, s := range []string{
		"",
		"A_B-C.D",
		"abcdefghijklmnopqrstuvwxyz",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"0123456789",
		"PythonMachine1",
	} {
		c.Assert(Encode(s), qt.Equals, s)
	}
}

func TestEncodeExamples(t *testing.T) {
	c := qt.New(t)
	c.Assert(Encode(" "), qt.Equals, "%20")
	c.Assert(Encode("é"), qt.Equals, "%E9")
	c.Assert(Encode("Hello World!"), qt.Equals, "Hello%20World%21")
	c.Assert(Encode("100%"), qt.Equals, "100%25")
	c.Assert(Encode("a\nb"), qt.Equals, "a%0Ab")
	c.Assert(Encode("Åke åt 3 äpplen"), qt.Equals, "%C5ke%20%E5t%203%20%E4pplen")
}

func TestEveryLatin1Byte(t *testing.T) {
	c := qt.New(t)
	for r := rune(0); r <= 0xff; r++ {
		if IsSafe(r) {
			continue
		}
		want := fmt.Sprintf("%%%02X", r)
		c.Assert(Encode(string(r)), qt.Equals, want, qt.Commentf("rune %U", r))
	}
}

func TestNotIdempotent(t *testing.T) {
	c := qt.New(t)
	once := Encode("a b")
	c.Assert(once, qt.Equals, "a%20b")
	c.Assert(Encode(once), qt.Equals, "a%2520b")
}

func TestAboveLatin1(t *testing.T) {
	c := qt.New(t)
	c.Assert(Encode("€5"), qt.Equals, "%1A5")
	c.Assert(Encode("日本"), qt.Equals, "%1A%1A")
	c.Assert(Encode("a\xffb"), qt.Equals, "a%1Ab")

	_, err := EncodeStrict("price €5")
	c.Assert(errors.Is(err, ErrUnrepresentable), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, `.*U\+20AC at byte 6`)

	s, err := EncodeStrict("Café")
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.Equals, "Caf%E9")
}

func TestDecode(t *testing.T) {
	c := qt.New(t)
	c.Assert(Decode("Hello%20World%21"), qt.Equals, "Hello World!")
	c.Assert(Decode("Caf%e9"), qt.Equals, "Café")
	c.Assert(Decode("a+b"), qt.Equals, "a b")
	c.Assert(Decode("100%"), qt.Equals, "100%")
	c.Assert(Decode("%zz%4"), qt.Equals, "%zz%4")
	c.Assert(Decode("plain ünïcode 日本"), qt.Equals, "plain ünïcode 日本")
}

func TestDecodeReversesEncode(t *testing.T) {
	c := qt.New(t)
	for _, s := range []string{
		"A Logmessage from mr Pico W",
		"{\"Message\":\"x+y=z\"}",
		"tab\there, 50% off & ÿ",
		"",
	} {
		c.Assert(Decode(Encode(s)), qt.Equals, s)
	}
}
