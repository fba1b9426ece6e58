/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringValue(t *testing.T) {
	doc, err := parseDocument([]byte(`base: &img gcr.io/acme/api:v1
tag: *img
nested:
  tag: ignored
count: 3
`))
	require.NoError(t, err)

	tests := []struct {
		property string
		want     string
		wantOK   bool
	}{
		{property: "base", want: "gcr.io/acme/api:v1", wantOK: true},
		{property: "tag", want: "gcr.io/acme/api:v1", wantOK: true},
		{property: "nested"},
		{property: "count"},
		{property: "missing"},
	}
	for _, tt := range tests {
		got, ok := stringValue(doc, tt.property)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("stringValue(%q): got = (%q, %v), wanted = (%q, %v)", tt.property, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNewDocument(t *testing.T) {
	got, err := encodeDocument(newDocument("image", "true"))
	require.NoError(t, err)
	if want := "image: \"true\"\n"; string(got) != want {
		t.Errorf("encodeDocument: got = %q, wanted = %q", got, want)
	}
}
