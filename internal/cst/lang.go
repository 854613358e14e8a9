package cst

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Language selects the grammar used to parse a file.
type Language uint8

const (
	LangUnknown Language = iota
	LangC
	LangCPP
)

func (l Language) String() string {
	switch l {
	case LangC:
		return "c"
	case LangCPP:
		return "cpp"
	}
	return "unknown"
}

var extLanguages = map[string]Language{
	".c":   LangC,
	".h":   LangC,
	".cc":  LangCPP,
	".cpp": LangCPP,
	".cxx": LangCPP,
	".c++": LangCPP,
	".hh":  LangCPP,
	".hpp": LangCPP,
	".hxx": LangCPP,
	".h++": LangCPP,
	".ipp": LangCPP,
	".tpp": LangCPP,
}

// LanguageForPath maps a file extension to its grammar.
func LanguageForPath(path string) Language {
	return extLanguages[strings.ToLower(filepath.Ext(path))]
}

// ParseLanguage accepts the names used on the command line and in config files.
func ParseLanguage(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "c":
		return LangC, nil
	case "cpp", "c++", "cxx":
		return LangCPP, nil
	}
	return LangUnknown, fmt.Errorf("unknown language %q (want c or cpp)", name)
}

func (l Language) grammar() *sitter.Language {
	switch l {
	case LangC:
		return c.GetLanguage()
	case LangCPP:
		return cpp.GetLanguage()
	}
	return nil
}
