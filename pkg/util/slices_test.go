package util

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestSliceToMap(t *testing.T) {
	RegisterTestingT(t)

	values := SliceToMap([]string{"name=world", "greeting=hi there", "flag"})
	Expect(values).To(HaveKeyWithValue("name", "world"))
	Expect(values).To(HaveKeyWithValue("greeting", "hi there"))
	Expect(values).To(HaveKeyWithValue("flag", ""))
}

func TestReplacePlaceholders(t *testing.T) {
	RegisterTestingT(t)

	values := map[string]string{"name": "world", "lang": "Go"}
	Expect(ReplacePlaceholders("Hello, {{name}}! Tell me about {{lang}}.", values)).
		To(Equal("Hello, world! Tell me about Go."))
	Expect(ReplacePlaceholders("{{name}} and {{name}}", values)).To(Equal("world and world"))
	Expect(ReplacePlaceholders("no placeholders", values)).To(Equal("no placeholders"))
	Expect(ReplacePlaceholders("{{unknown}}", values)).To(Equal("{{unknown}}"))
}
