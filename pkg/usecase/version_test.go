package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/nixbump/pkg/usecase"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{tag: "v1.4.2", want: "1.4.2"},
		{tag: "1.4.2", want: "1.4.2"},
		{tag: "vv1.0.0", want: "v1.0.0"},
		{tag: "V1.0.0", want: "V1.0.0"},
		{tag: "v", want: ""},
		{tag: "", want: ""},
		{tag: "version-2", want: "ersion-2"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			gt.Value(t, usecase.NormalizeVersion(tt.tag)).Equal(tt.want)
		})
	}
}

func TestIsDowngrade(t *testing.T) {
	gt.True(t, usecase.IsDowngrade("1.4.2", "1.4.1"))
	gt.False(t, usecase.IsDowngrade("1.4.1", "1.4.2"))
	gt.False(t, usecase.IsDowngrade("1.4.1", "1.4.1"))
	gt.False(t, usecase.IsDowngrade("", "1.0.0"))
	gt.False(t, usecase.IsDowngrade("nightly", "1.0.0"))
}
