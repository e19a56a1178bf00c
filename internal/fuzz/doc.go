// Package fuzztests houses Go fuzz harnesses that exercise the stck front-end
// (source -> lexer -> preprocessor). Its goal is to smoke test robustness and
// guard against panics, hangs and span corruption on arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через лексер и препроцессор.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/preprocess,
// internal/diag, internal/testkit.

package fuzztests
