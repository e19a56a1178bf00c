package diagfmt

import "stck/internal/source"

const unknownFile = "<unknown>"

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if f == nil {
		return unknownFile
	}
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	case PathModeAuto:
		return f.FormatPath("auto", "")
	default:
		return f.Path
	}
}
