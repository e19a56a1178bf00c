package lsp

import (
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"stck/internal/diag"
	"stck/internal/driver"
	"stck/internal/source"
)

const diagnosticSource = "stck"

// groupDiagnostics converts the diagnostics of res to LSP form, keyed by the
// URI of the file each one points into. owner is always present.
func groupDiagnostics(res *driver.Result, owner string) map[string][]protocol.Diagnostic {
	grouped := map[string][]protocol.Diagnostic{owner: {}}
	if res == nil || res.Bag == nil {
		return grouped
	}
	for _, d := range res.Bag.Items() {
		file := res.FileSet.Get(d.Primary.File)
		uri := owner
		if file != nil && file.ID != res.File.ID {
			uri = pathToURI(file.Path)
		}
		grouped[uri] = append(grouped[uri], toProtocolDiagnostic(res.FileSet, owner, res.File, d))
	}
	return grouped
}

func toProtocolDiagnostic(fs *source.FileSet, owner string, root *source.File, d diag.Diagnostic) protocol.Diagnostic {
	severity := toProtocolSeverity(d.Severity)
	src := diagnosticSource
	out := protocol.Diagnostic{
		Range:    rangeForSpan(fs.Get(d.Primary.File), d.Primary),
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: d.Code.ID()},
		Source:   &src,
		Message:  d.Message,
	}
	for _, note := range d.Notes {
		file := fs.Get(note.Span.File)
		if file == nil {
			continue
		}
		uri := owner
		if file.ID != root.ID {
			uri = pathToURI(file.Path)
		}
		out.RelatedInformation = append(out.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: uri, Range: rangeForSpan(file, note.Span)},
			Message:  note.Msg,
		})
	}
	return out
}

func toProtocolSeverity(sev diag.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diag.SevError:
		return protocol.DiagnosticSeverityError
	case diag.SevWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
