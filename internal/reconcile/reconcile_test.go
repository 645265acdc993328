package reconcile

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/copyrighter/internal/comment"
	"github.com/steveyegge/copyrighter/internal/git"
	"github.com/steveyegge/copyrighter/internal/notice"
	"github.com/steveyegge/copyrighter/internal/years"
)

const org = "Acme Corp"

// fakeHistory serves fixed years per path; missing paths have no history.
type fakeHistory struct {
	years map[string][]int
	err   error
}

func (f *fakeHistory) YearsModified(_ context.Context, path string) (years.Set, error) {
	if f.err != nil {
		return nil, f.err
	}
	ys, ok := f.years[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, git.ErrNoHistory)
	}
	return years.NewSet(ys...), nil
}

func newEngine(t *testing.T, hist map[string][]int, opts Options) *Engine {
	t.Helper()
	if opts.Render == (notice.RenderOptions{}) {
		opts.Render = notice.RenderOptions{Rights: notice.DefaultRights}
	}
	e, err := NewEngine(&fakeHistory{years: hist}, org, opts)
	require.NoError(t, err)
	return e
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		history  []int
		input    string
		want     string
		status   Status
		replaced bool
		style    comment.Style
	}{
		{
			name:    "insert into go file",
			path:    "main.go",
			history: []int{2018, 2019, 2020, 2022},
			input:   "package main\n",
			want:    "// Copyright 2018-2020, 2022 Acme Corp. All rights reserved.\n\npackage main\n",
			status:  StatusUpdated,
			style:   comment.StyleSlash,
		},
		{
			name:     "union with existing notice",
			path:     "main.go",
			history:  []int{2020},
			input:    "// Copyright 2015 Acme Corp. All rights reserved.\npackage main\n",
			want:     "// Copyright 2015, 2020 Acme Corp. All rights reserved.\npackage main\n",
			status:   StatusUpdated,
			replaced: true,
			style:    comment.StyleSlash,
		},
		{
			name:     "overlapping and adjacent years merge",
			path:     "main.go",
			history:  []int{2019, 2020},
			input:    "// Copyright 2017-2019 Acme Corp. All rights reserved.\npackage main\n",
			want:     "// Copyright 2017-2020 Acme Corp. All rights reserved.\npackage main\n",
			status:   StatusUpdated,
			replaced: true,
			style:    comment.StyleSlash,
		},
		{
			name:     "rights on a continuation line",
			path:     "main.go",
			history:  []int{2020},
			input:    "// Copyright 2019 Acme Corp.\n// All rights reserved.\npackage main\n",
			want:     "// Copyright 2019-2020 Acme Corp. All rights reserved.\npackage main\n",
			status:   StatusUpdated,
			replaced: true,
			style:    comment.StyleSlash,
		},
		{
			name:     "organization on a continuation line",
			path:     "lib.c",
			history:  []int{2020},
			input:    "/*\n * Copyright 2019\n * Acme Corp\n */\nint x;\n",
			want:     "/*\n * Copyright 2019-2020 Acme Corp. All rights reserved.\n */\nint x;\n",
			status:   StatusUpdated,
			replaced: true,
			style:    comment.StyleCBlock,
		},
		{
			name:     "adjacent years merge",
			path:     "main.go",
			history:  []int{2020},
			input:    "// Copyright 2018-2019 Acme Corp. All rights reserved.\n",
			want:     "// Copyright 2018-2020 Acme Corp. All rights reserved.\n",
			status:   StatusUpdated,
			replaced: true,
			style:    comment.StyleSlash,
		},
		{
			name:    "insert after shebang",
			path:    "run.sh",
			history: []int{2021},
			input:   "#!/bin/sh\necho hi\n",
			want:    "#!/bin/sh\n# Copyright 2021 Acme Corp. All rights reserved.\n\necho hi\n",
			status:  StatusUpdated,
			style:   comment.StyleHash,
		},
		{
			name:    "crlf preserved",
			path:    "main.go",
			history: []int{2020},
			input:   "package main\r\n",
			want:    "// Copyright 2020 Acme Corp. All rights reserved.\r\n\r\npackage main\r\n",
			status:  StatusUpdated,
			style:   comment.StyleSlash,
		},
		{
			name:    "package doc stays separate",
			path:    "doc.go",
			history: []int{2020},
			input:   "// Package x does things.\npackage x\n",
			want:    "// Copyright 2020 Acme Corp. All rights reserved.\n\n// Package x does things.\npackage x\n",
			status:  StatusUpdated,
			style:   comment.StyleSlash,
		},
		{
			name:    "empty file",
			path:    "empty.py",
			history: []int{2024},
			input:   "",
			want:    "# Copyright 2024 Acme Corp. All rights reserved.\n",
			status:  StatusUpdated,
			style:   comment.StyleHash,
		},
		{
			name:     "block comment keeps delimiters",
			path:     "lib.c",
			history:  []int{2020},
			input:    "/* Copyright 2019 Old Name */\nint x;\n",
			want:     "/* Copyright 2019-2020 Acme Corp. All rights reserved. */\nint x;\n",
			status:   StatusUpdated,
			replaced: true,
			style:    comment.StyleCBlock,
		},
		{
			name:     "already current",
			path:     "main.go",
			history:  []int{2019, 2020},
			input:    "// Copyright 2019-2020 Acme Corp. All rights reserved.\npackage main\n",
			want:     "// Copyright 2019-2020 Acme Corp. All rights reserved.\npackage main\n",
			status:   StatusUnchanged,
			replaced: true,
			style:    comment.StyleSlash,
		},
		{
			name:    "xml prolog",
			path:    "pom.xml",
			history: []int{2022},
			input:   "<?xml version=\"1.0\"?>\n<project/>\n",
			want:    "<?xml version=\"1.0\"?>\n<!-- Copyright 2022 Acme Corp. All rights reserved. -->\n\n<project/>\n",
			status:  StatusUpdated,
			style:   comment.StyleXMLBlock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, map[string][]int{tt.path: tt.history}, Options{})

			res, err := e.Reconcile(context.Background(), tt.path, []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(res.Content))
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.replaced, res.Replaced)
			assert.Equal(t, tt.style, res.Style)
			assert.Empty(t, res.Warnings)

			// a second pass over the output changes nothing
			again, err := e.Reconcile(context.Background(), tt.path, res.Content)
			require.NoError(t, err)
			assert.Equal(t, StatusUnchanged, again.Status)
			assert.Equal(t, tt.want, string(again.Content))
		})
	}
}

func TestReconcileBytesOutsideSpanUntouched(t *testing.T) {
	input := "/*\n * (C) Copyright 2019 Acme  \n * Licensed under MIT.\n */\r\npackage x\n\nfunc f() {}\n"
	e := newEngine(t, map[string][]int{"x.go": {2021}}, Options{})

	res, err := e.Reconcile(context.Background(), "x.go", []byte(input))
	require.NoError(t, err)
	require.Equal(t, StatusUpdated, res.Status)

	out := string(res.Content)
	prefix := "/*\n * (C) "
	suffix := "  \n * Licensed under MIT.\n */\r\npackage x\n\nfunc f() {}\n"
	assert.True(t, strings.HasPrefix(out, prefix))
	assert.True(t, strings.HasSuffix(out, suffix))
	assert.Equal(t, "Copyright 2019, 2021 Acme Corp. All rights reserved.", out[len(prefix):len(out)-len(suffix)])
}

func TestReconcileKeepsPackageDoc(t *testing.T) {
	e := newEngine(t, map[string][]int{"doc.go": {2020}}, Options{})

	res, err := e.Reconcile(context.Background(), "doc.go", []byte("// Package x does things.\npackage x\n"))
	require.NoError(t, err)

	f, err := parser.ParseFile(token.NewFileSet(), "doc.go", res.Content, parser.ParseComments)
	require.NoError(t, err)
	require.NotNil(t, f.Doc)
	assert.Equal(t, "Package x does things.\n", f.Doc.Text())
}

func TestReconcileNoYears(t *testing.T) {
	e := newEngine(t, nil, Options{})
	input := []byte("package main\n")

	res, err := e.Reconcile(context.Background(), "main.go", input)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, ReasonNoYears, res.Reason)
	assert.Equal(t, input, res.Content)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnNoHistory, res.Warnings[0].Kind)
}

func TestReconcileNoHistoryKeepsNotice(t *testing.T) {
	e := newEngine(t, nil, Options{HistoryStart: 2018})
	input := "// Copyright 2015-2023 Acme Corp. All rights reserved.\n"

	res, err := e.Reconcile(context.Background(), "main.go", []byte(input))
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, res.Status)
	assert.Equal(t, input, string(res.Content))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnNoHistory, res.Warnings[0].Kind)
}

func TestReconcileMalformedYears(t *testing.T) {
	e := newEngine(t, map[string][]int{"x.go": {2021}}, Options{})

	res, err := e.Reconcile(context.Background(), "x.go", []byte("// Copyright 20l9 Acme\npackage x\n"))
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, "// Copyright 2021 Acme Corp. All rights reserved.\npackage x\n", string(res.Content))

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnYearParse, res.Warnings[0].Kind)
	var malformed *years.MalformedYearsError
	assert.True(t, errors.As(res.Warnings[0].Err, &malformed))
}

func TestReconcileMalformedYearsWithoutHistory(t *testing.T) {
	e := newEngine(t, nil, Options{})
	input := []byte("// Copyright 20l9 Acme\npackage x\n")

	res, err := e.Reconcile(context.Background(), "x.go", input)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, input, res.Content)
	assert.Len(t, res.Warnings, 2)
}

func TestReconcileHistoryStartCutoff(t *testing.T) {
	e := newEngine(t, map[string][]int{"x.go": {2019, 2020}}, Options{HistoryStart: 2018})

	res, err := e.Reconcile(context.Background(), "x.go", []byte("// Copyright 2015-2023 Acme Corp. All rights reserved.\n"))
	require.NoError(t, err)
	assert.Equal(t, "// Copyright 2015-2020 Acme Corp. All rights reserved.\n", string(res.Content))
	assert.Equal(t, "2015-2020", years.Format(res.Years))
}

func TestReconcileErrors(t *testing.T) {
	e := newEngine(t, map[string][]int{"image.png": {2020}}, Options{})
	_, err := e.Reconcile(context.Background(), "image.png", []byte("x"))
	var unsupported *comment.UnsupportedFileTypeError
	assert.True(t, errors.As(err, &unsupported))

	boom := errors.New("boom")
	e, err = NewEngine(&fakeHistory{err: boom}, org, Options{})
	require.NoError(t, err)
	_, err = e.Reconcile(context.Background(), "main.go", []byte("package main\n"))
	assert.ErrorIs(t, err, boom)
}

func TestReconcileFallbackStyle(t *testing.T) {
	styles := comment.NewRegistry()
	styles.SetFallback(comment.StyleHash)
	e := newEngine(t, map[string][]int{"notes.custom": {2020}}, Options{Styles: styles})

	res, err := e.Reconcile(context.Background(), "notes.custom", []byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, "# Copyright 2020 Acme Corp. All rights reserved.\n\nhello\n", string(res.Content))
}

func TestReconcileSymbol(t *testing.T) {
	e := newEngine(t, map[string][]int{"a.go": {2020}}, Options{
		Render: notice.RenderOptions{Symbol: true},
	})

	res, err := e.Reconcile(context.Background(), "a.go", []byte("// Copyright 2019 Acme Corp\n"))
	require.NoError(t, err)
	assert.Equal(t, "// Copyright © 2019-2020 Acme Corp\n", string(res.Content))
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(&fakeHistory{}, "   ", Options{})
	assert.ErrorIs(t, err, notice.ErrEmptyOrganization)

	_, err = NewEngine(nil, org, Options{})
	assert.Error(t, err)
}
