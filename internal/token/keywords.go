package token

var keywords = map[string]Kind{
	"true":    Bool,
	"false":   Bool,
	"macro":   Macro,
	"include": Include,
	"proc":    Proc,
	"do":      Do,
	"end":     End,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые - только lowercase версии распознаются.
func LookupKeyword(word string) (Kind, bool) {
	k, ok := keywords[word]
	return k, ok
}
