package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
)

var languageSeeds = []string{
	"",
	"1 2 +",
	`macro "inc" 1 + end 41 inc`,
	`macro "m" proc p do 1 end end m`,
	`proc main do while dup 0 > do 1 - end end`,
	`"a\tb\n\"q\"\\"`,
	`""`,
	`"unclosed`,
	`"trailing\`,
	"9223372036854775807 9223372036854775808 -5",
	"end! a\"b true false",
	`include "nope"`,
	"macro",
	`macro "a" b end macro "b" a end a`,
	"// comment\n1\t2",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.stck файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".stck" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
