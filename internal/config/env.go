package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	derrors "git.home.luguber.info/inful/elucidator/internal/errors"
)

// EnvFileName is the optional environment file at the site root.
const EnvFileName = ".env"

// loadEnvFile loads <root>/.env if it exists. Existing process environment
// variables are not overwritten.
func loadEnvFile(root string) error {
	path := filepath.Join(root, EnvFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return derrors.ConfigInvalid(path, err)
	}
	return nil
}

// expandEnv replaces $VAR and ${VAR} references to set environment
// variables. Any other dollar sequence, including references to unset
// variables and an unterminated "${", is left exactly as written.
func expandEnv(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '$' {
			b.WriteByte(s[i])
			i++
			continue
		}
		ref, name := envReference(s[i:])
		if v, ok := os.LookupEnv(name); ok && name != "" {
			b.WriteString(v)
		} else {
			b.WriteString(ref)
		}
		i += len(ref)
	}
	return b.String()
}

// envReference returns the reference text at the start of s, which begins
// with '$', and the variable name it refers to. The name is empty when s
// does not start with a well-formed reference; ref is then just "$".
func envReference(s string) (ref, name string) {
	if strings.HasPrefix(s, "${") {
		end := strings.IndexByte(s, '}')
		if end < 0 || !isEnvName(s[2:end]) {
			return "$", ""
		}
		return s[:end+1], s[2:end]
	}
	n := 1
	for n < len(s) && isEnvNameByte(s[n], n == 1) {
		n++
	}
	return s[:n], s[1:n]
}

func isEnvName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isEnvNameByte(name[i], i == 0) {
			return false
		}
	}
	return true
}

func isEnvNameByte(c byte, first bool) bool {
	switch {
	case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case '0' <= c && c <= '9':
		return !first
	}
	return false
}
