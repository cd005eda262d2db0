package util

import (
	"path/filepath"
	"strings"
)

const (
	JackExt = ".jack"
	VMExt   = ".vm"
)

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

// IsSpace only accepts ascii white space, jack source is ascii.
func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// AllNumbers reports whether s is a non-empty run of digits.
func AllNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsNumber(s[i]) {
			return false
		}
	}
	return true
}

// AllLetterOrUnderscoreOrNumber reports whether s is a non-empty run of identifier characters.
func AllLetterOrUnderscoreOrNumber(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsLetterOrUnderscoreOrNumber(s[i]) {
			return false
		}
	}
	return true
}

func IsJackFile(fileName string) bool {
	return strings.HasSuffix(fileName, JackExt) && len(fileName) > len(JackExt)
}

// VMOutputPath returns the .vm path written next to a .jack source file.
func VMOutputPath(jackPath string) string {
	return strings.TrimSuffix(jackPath, filepath.Ext(jackPath)) + VMExt
}

// ClassNameOf returns the class name a jack file is expected to declare, Main.jack -> Main.
func ClassNameOf(jackPath string) string {
	base := filepath.Base(jackPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
