package cabme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCreateOrderURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{
			name: "relative path joined to base",
			base: "https://api.cabme.example/api/v1",
			path: "request/create",
			want: "https://api.cabme.example/api/v1/request/create",
		},
		{
			name: "trailing slash on base normalized",
			base: "https://api.cabme.example/api/v1/",
			path: "request/create",
			want: "https://api.cabme.example/api/v1/request/create",
		},
		{
			name: "leading slash on path normalized",
			base: "https://api.cabme.example/api/v1",
			path: "/request/create",
			want: "https://api.cabme.example/api/v1/request/create",
		},
		{
			name: "duplicated version segment dropped",
			base: "https://api.cabme.example/api/v1",
			path: "v1/request/create",
			want: "https://api.cabme.example/api/v1/request/create",
		},
		{
			name: "full https override used verbatim",
			base: "https://api.cabme.example/api/v1",
			path: "https://other.example/custom/create",
			want: "https://other.example/custom/create",
		},
		{
			name: "full http override used verbatim",
			base: "https://api.cabme.example/api/v1",
			path: "http://other.example/custom/create",
			want: "http://other.example/custom/create",
		},
		{
			name: "empty path falls back to base",
			base: "https://api.cabme.example/api/v1/",
			path: "",
			want: "https://api.cabme.example/api/v1",
		},
		{
			name: "path equal to version segment collapses to base",
			base: "https://api.cabme.example/api/v1",
			path: "v1",
			want: "https://api.cabme.example/api/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCreateOrderURL(tt.base, tt.path))
		})
	}
}
