package util

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSourceFile(t *testing.T) {
	file := NewParseSourceFile("ab\ncd\n\nef", "a.wick")

	t.Run("should compute line and column", func(t *testing.T) {
		cases := []struct {
			offset, line, col int
		}{
			{0, 0, 0},
			{1, 0, 1},
			{3, 1, 0},
			{4, 1, 1},
			{6, 2, 0},
			{8, 3, 1},
		}
		for _, c := range cases {
			loc := file.Location(c.offset)
			if loc.Line != c.line || loc.Col != c.col {
				t.Errorf("Expected %d:%d for offset %d, got %d:%d", c.line, c.col, c.offset, loc.Line, loc.Col)
			}
		}
	})

	t.Run("should move locations", func(t *testing.T) {
		loc := file.Location(1).MoveBy(3)
		if loc.Line != 1 || loc.Col != 1 {
			t.Errorf("Expected 1:1, got %d:%d", loc.Line, loc.Col)
		}
	})

	t.Run("should slice spans", func(t *testing.T) {
		if got := file.Span(3, 5).String(); got != "cd" {
			t.Errorf("Expected %q, got %q", "cd", got)
		}
	})
}

func TestErrorList(t *testing.T) {
	file := NewParseSourceFile("let a = b;", "a.wick")

	t.Run("should separate warnings from errors", func(t *testing.T) {
		var errs ErrorList
		errs.Warn(file.Span(0, 3), "unused")
		if errs.HasErrors() {
			t.Errorf("Expected warnings only")
		}
		if errs.Err() != nil {
			t.Errorf("Expected nil error for warning-only list")
		}
		errs.Add(file.Span(8, 9), "missing binding variable for `%s`", "b")
		if !errs.HasErrors() {
			t.Errorf("Expected errors")
		}
		if len(errs.Errors()) != 1 {
			t.Errorf("Expected 1 error, got %d", len(errs.Errors()))
		}
	})

	t.Run("should sort by position", func(t *testing.T) {
		var errs ErrorList
		errs.Add(file.Span(8, 9), "second")
		errs.Add(file.Span(0, 3), "first")
		errs.Sort()
		got := []string{errs[0].Msg, errs[1].Msg}
		if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
			t.Errorf("unexpected order (-want +got):\n%s", diff)
		}
	})

	t.Run("should render context", func(t *testing.T) {
		e := NewParseError(file.Span(8, 9), "missing binding variable for `b`")
		msg := e.Error()
		if !strings.Contains(msg, "[ERROR ->]b;") || !strings.HasSuffix(msg, "a.wick@0:8") {
			t.Errorf("unexpected message %q", msg)
		}
	})
}

func TestSplitNameList(t *testing.T) {
	got := SplitNameList("a, b:c ,d")
	want := []NameList{
		{Local: "a", External: "a", Offset: 0},
		{Local: "b", External: "c", Offset: 3},
		{Local: "d", External: "d", Offset: 8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected entries (-want +got):\n%s", diff)
	}
	if got := PascalCase("todo-item"); got != "TodoItem" {
		t.Errorf("Expected %q, got %q", "TodoItem", got)
	}
}
