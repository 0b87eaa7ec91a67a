package clipboard

import "testing"

func TestNormalizePaste(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text unchanged",
			in:   "hello\nworld\n",
			want: "hello\nworld\n",
		},
		{
			name: "crlf converted",
			in:   "hello\r\nworld\r\n",
			want: "hello\nworld\n",
		},
		{
			name: "bare cr converted",
			in:   "hello\rworld",
			want: "hello\nworld",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := normalizePaste(tc.in)
			if got != tc.want {
				t.Fatalf("normalizePaste() = %q, want %q", got, tc.want)
			}
		})
	}
}
