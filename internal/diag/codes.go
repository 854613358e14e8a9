package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Форматтер
	FmtInfo                 Code = 1000
	FmtUnsupportedConstruct Code = 1001
	FmtMalformedAssumption  Code = 1002
	FmtParseError           Code = 1003
	FmtRenderPanic          Code = 1004
	FmtNotIdempotent        Code = 1005
	FmtTokensChanged        Code = 1006
	FmtWouldReformat        Code = 1007

	// Ввод-вывод
	IOInfo             Code = 4000
	IOLoadFileError    Code = 4001
	IOWriteFileError   Code = 4002
	IOUnsupportedExt   Code = 4003
	IOCacheWriteFailed Code = 4004

	// Конфигурация
	CfgInfo         Code = 5000
	CfgParseError   Code = 5001
	CfgInvalidValue Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	FmtInfo:                 "Formatter information",
	FmtUnsupportedConstruct: "Construct has no formatting rule; emitted verbatim",
	FmtMalformedAssumption:  "Node shape did not match its formatting rule; emitted verbatim",
	FmtParseError:           "Parser could not recognise this region; emitted verbatim",
	FmtRenderPanic:          "Formatting aborted; file left unchanged",
	FmtNotIdempotent:        "Formatting is not stable on a second pass",
	FmtTokensChanged:        "Formatting changed the token sequence",
	FmtWouldReformat:        "File is not formatted",
	IOInfo:                  "I/O information",
	IOLoadFileError:         "I/O load file error",
	IOWriteFileError:        "I/O write file error",
	IOUnsupportedExt:        "Unsupported file extension",
	IOCacheWriteFailed:      "Cache entry could not be written",
	CfgInfo:                 "Configuration information",
	CfgParseError:           "Configuration file could not be parsed",
	CfgInvalidValue:         "Configuration value is invalid",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("FMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
