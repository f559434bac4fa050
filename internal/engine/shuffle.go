package engine

import "diagnosis-quiz-service/internal/domain"

// RandomSource is satisfied by *math/rand.Rand.
type RandomSource interface {
	Intn(n int) int
}

// Permutation returns a uniformly shuffled order of 0..n-1 (Fisher–Yates).
func Permutation(n int, rnd RandomSource) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// ShuffledOptions returns q's options in a random presentation order.
// q is not modified and scoring is unaffected.
func ShuffledOptions(q domain.Question, rnd RandomSource) []domain.Option {
	order := Permutation(len(q.Options), rnd)
	out := make([]domain.Option, len(order))
	for i, idx := range order {
		out[i] = q.Options[idx].Clone()
	}
	return out
}
