package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/pbaille/sentiment/internal/domain"
)

const eps = 1e-9

func TestTextScoreBoundsAndMonotonicity(t *testing.T) {
	t.Parallel()

	const steps = 20
	for i := 0; i <= steps; i++ {
		for j := 0; i+j <= steps; j++ {
			p := domain.ClassProbabilities{
				Negative: float64(i) / steps,
				Positive: float64(j) / steps,
			}
			p.Neutral = 1 - p.Negative - p.Positive
			s := TextScore(p)
			if s < -eps || s > 10+eps {
				t.Fatalf("TextScore(%+v)=%v, want within [0,10]", p, s)
			}

			// shifting mass from neutral to positive never lowers the score
			if p.Neutral >= 0.05 {
				up := p
				up.Neutral -= 0.05
				up.Positive += 0.05
				if TextScore(up) < s-eps {
					t.Fatalf("TextScore not monotonic in positive: %+v -> %+v", p, up)
				}
				down := p
				down.Neutral -= 0.05
				down.Negative += 0.05
				if TextScore(down) > s+eps {
					t.Fatalf("TextScore not antitonic in negative: %+v -> %+v", p, down)
				}
			}
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score float64
		want  domain.SentimentClass
	}{
		{0, domain.Negative},
		{4.4999, domain.Negative},
		{4.5, domain.Neutral},
		{5.9999, domain.Neutral},
		{6.0, domain.Positive},
		{10, domain.Positive},
	}
	for _, tc := range cases {
		if got := Classify(tc.score); got != tc.want {
			t.Fatalf("Classify(%v)=%v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestCombine(t *testing.T) {
	t.Parallel()

	if got := Combine(10, 0, 0.7); math.Abs(got-7.0) > eps {
		t.Fatalf("Combine(10,0,0.7)=%v, want 7", got)
	}
	if got := Combine(2, 8, 1); got != 2 {
		t.Fatalf("Combine with weight 1=%v, want text score", got)
	}
	if got := Combine(2, 8, 0); got != 8 {
		t.Fatalf("Combine with weight 0=%v, want rating", got)
	}
}

func TestNormalizeRating(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		rating  float64
		policy  RatingPolicy
		want    float64
		wantErr bool
	}{
		{"max", 5, RatingReject, 10, false},
		{"zero", 0, RatingReject, 0, false},
		{"middle", 2.5, RatingReject, 5, false},
		{"above rejected", 6, RatingReject, 0, true},
		{"below rejected", -1, RatingReject, 0, true},
		{"above clamped", 6, RatingClamp, 10, false},
		{"below clamped", -1, RatingClamp, 0, false},
		{"nan rejected under clamp", math.NaN(), RatingClamp, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeRating(tc.rating, 5, tc.policy)
			if tc.wantErr {
				if !errors.Is(err, ErrRatingOutOfRange) {
					t.Fatalf("err=%v, want ErrRatingOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > eps {
				t.Fatalf("NormalizeRating(%v)=%v, want %v", tc.rating, got, tc.want)
			}
		})
	}

	if _, err := NormalizeRating(3, 0, RatingReject); err == nil {
		t.Fatalf("expected error for zero rating max")
	}
}

func TestParseRatingPolicy(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]RatingPolicy{"": RatingReject, "reject": RatingReject, " Clamp ": RatingClamp} {
		got, err := ParseRatingPolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParseRatingPolicy(%q)=%q,%v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseRatingPolicy("round"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}
	for _, w := range []float64{-0.1, 1.1, math.NaN()} {
		opts := DefaultOptions()
		opts.WeightText = w
		if err := opts.Validate(); err == nil {
			t.Fatalf("weight %v accepted", w)
		}
	}
	opts := DefaultOptions()
	opts.RatingMax = 0
	if err := opts.Validate(); err == nil {
		t.Fatalf("zero rating max accepted")
	}
}
