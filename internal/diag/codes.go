package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo           Code = 1000
	LexUnexpectedEOF  Code = 1001
	LexUnclosedString Code = 1002
	LexEmptyString    Code = 1003
	LexIntOverflow    Code = 1004

	// Препроцессор
	PreInfo            Code = 2000
	PreInvalidToken    Code = 2001
	PreDuplicateMacro  Code = 2002
	PreUndefinedMacro  Code = 2003 // зарезервировано для парсера
	PreCircularInclude Code = 2004
	PreFileError       Code = 2005
	PreUnexpectedEOF   Code = 2006
	PreUnclosedMacro   Code = 2007
	PreDepthLimit      Code = 2008
	PreLexError        Code = 2009

	// Ввод/вывод и проект
	IOLoadFileError   Code = 4001
	IOCacheError      Code = 4002
	ProjInvalidToml   Code = 5001
	ProjBadIncludeDir Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	LexInfo:            "Lexical information",
	LexUnexpectedEOF:   "Unexpected end of input",
	LexUnclosedString:  "Unclosed string literal",
	LexEmptyString:     "Empty string literal",
	LexIntOverflow:     "Integer literal out of 64-bit range",
	PreInfo:            "Preprocessor information",
	PreInvalidToken:    "Invalid token after directive",
	PreDuplicateMacro:  "Macro defined twice",
	PreUndefinedMacro:  "Undefined macro",
	PreCircularInclude: "Circular include or macro expansion",
	PreFileError:       "Cannot read included file",
	PreUnexpectedEOF:   "Unexpected end of input in directive",
	PreUnclosedMacro:   "Macro body is never closed",
	PreDepthLimit:      "Include/expansion depth limit exceeded",
	PreLexError:        "Lexical errors in included file",
	IOLoadFileError:    "Failed to load file",
	IOCacheError:       "Token cache failure",
	ProjInvalidToml:    "Invalid stck.toml",
	ProjBadIncludeDir:  "Include directory does not exist",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PRE%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
