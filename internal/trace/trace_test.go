package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

type recorder struct {
	level  Level
	events []Event
}

func (r *recorder) Emit(ev Event) { r.events = append(r.events, ev) }
func (r *recorder) Flush() error  { return nil }
func (r *recorder) Close() error  { return nil }
func (r *recorder) Level() Level  { return r.level }
func (r *recorder) Enabled() bool { return r.level > LevelOff }

func TestStartNestsAndTagsFile(t *testing.T) {
	rec := &recorder{level: LevelPhase}
	ctx := WithFile(WithTracer(context.Background(), rec), "a.stck")

	ctx, outer := Start(ctx, ScopeDriver, "preprocess")
	_, inner := Start(ctx, ScopePass, "lex")
	inner.WithExtra("tokens", "3").End("")
	outer.End("1 files")

	if len(rec.events) != 4 {
		t.Fatalf("got %d events, want 4", len(rec.events))
	}
	lexBegin := rec.events[1]
	if lexBegin.ParentID != outer.ID() || lexBegin.File != "a.stck" {
		t.Errorf("lex begin = %+v, want parent %d in a.stck", lexBegin, outer.ID())
	}
	if got := rec.events[2].Extra["tokens"]; got != "3" {
		t.Errorf("extra tokens = %q, want 3", got)
	}
	for i := 1; i < len(rec.events); i++ {
		if rec.events[i].Seq <= rec.events[i-1].Seq {
			t.Errorf("seq not increasing at %d", i)
		}
	}
}

func TestFilteredScopeIsInert(t *testing.T) {
	rec := &recorder{level: LevelPhase}
	ctx := WithTracer(context.Background(), rec)

	next, span := Start(ctx, ScopeDirective, "macro.expand")
	if span.ID() != 0 || span.End("x") != 0 {
		t.Errorf("filtered span should be inert")
	}
	if CurrentSpan(next) != CurrentSpan(ctx) {
		t.Errorf("filtered span must not replace the parent")
	}
	Point(rec, ScopeDirective, "macro.define", "", 0)
	if len(rec.events) != 0 {
		t.Errorf("got %d events, want none", len(rec.events))
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	ctx := WithFile(WithTracer(context.Background(), tr), "lib.stck")
	_, span := Start(ctx, ScopeFile, "include")
	span.End("done")
	Point(tr, ScopeFile, "include.skip", "lib.stck", span.ID())
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first["name"] != "include" || first["file"] != "lib.stck" || first["kind"] == "" {
		t.Errorf("unexpected event %v", first)
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error")
	}
	l, err := ParseLevel("DETAIL")
	if err != nil || l != LevelDetail {
		t.Errorf("ParseLevel(DETAIL) = %v, %v", l, err)
	}
	if !LevelDetail.ShouldEmit(ScopeFile) || LevelDetail.ShouldEmit(ScopeDirective) {
		t.Error("detail level should stop at file scope")
	}
}

func TestFromContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()).Enabled() {
		t.Error("empty context should yield a disabled tracer")
	}
}
