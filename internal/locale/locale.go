// Package locale resolves the user's message language from the
// environment and translates user-facing strings through an embedded
// catalog. Untranslated keys pass through unchanged, so English is
// the zero-configuration default.
package locale

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

//go:embed languages
var langFS embed.FS

var (
	langTable = make(map[string]any)
)

var (
	Language = sync.OnceValue(func() string {
		t, err := detect()
		if err != nil {
			return "en-US"
		}
		lang := t.String()
		switch {
		case strings.HasPrefix(lang, "zh-Hans"):
			return "zh-CN"
		}
		return lang
	})
)

// detect reads the usual POSIX locale variables in precedence order
// and parses the first usable one into a BCP-47 tag.
func detect() (language.Tag, error) {
	for _, key := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		name, _, _ := strings.Cut(v, ".")
		name, _, _ = strings.Cut(name, "@")
		if name == "" || name == "C" || name == "POSIX" {
			return language.AmericanEnglish, nil
		}
		return language.Parse(strings.ReplaceAll(name, "_", "-"))
	}
	return language.AmericanEnglish, nil
}

var (
	Initialize = sync.OnceValue(func() error {
		fd, err := langFS.Open(path.Join("languages", Language()+".toml"))
		if err != nil {
			return err
		}
		defer fd.Close() // nolint
		if _, err := toml.NewDecoder(fd).Decode(&langTable); err != nil {
			return err
		}
		return nil
	})
)

func translate(k string) string {
	if v, ok := langTable[k]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return k
}

func W(k string) string {
	return translate(k)
}

func Fprintf(w io.Writer, format string, a ...any) (n int, err error) {
	return fmt.Fprintf(w, translate(format), a...)
}

func Sprintf(format string, a ...any) string {
	return fmt.Sprintf(translate(format), a...)
}
