package engine

import (
	"testing"

	"vigilnet/internal/domain"
)

func TestDecideBucket(t *testing.T) {
	cases := []struct {
		a, b, c int
		want    domain.Bucket
	}{
		{0, 0, 0, domain.BucketA},
		{1, 1, 1, domain.BucketA},
		{3, 0, 0, domain.BucketA},
		{2, 2, 0, domain.BucketA}, // b must strictly beat a
		{1, 2, 0, domain.BucketB},
		{0, 3, 3, domain.BucketB}, // b wins the b/c tie
		{1, 2, 2, domain.BucketB},
		{0, 0, 3, domain.BucketC},
		{1, 0, 2, domain.BucketC},
		{0, 1, 2, domain.BucketC},
		{2, 0, 2, domain.BucketA}, // c must strictly beat a
	}
	for _, tc := range cases {
		if got := decideBucket(tc.a, tc.b, tc.c); got != tc.want {
			t.Errorf("decideBucket(%d, %d, %d) = %q, want %q", tc.a, tc.b, tc.c, got, tc.want)
		}
	}
}
