package model

type permutationGenerator interface {
	// Each position of a permutation indexes into its domain; positions not yet fixed hold unset.
	// All the constraints must take into account that if permutation[i] == unset then the permutation
	// is not ready to be evaluated if this evaluation involves permutation[i]
	//
	// Example:
	//
	//	generator := newPermutationGenerator(teachers, rooms, timeslots)
	//
	//	permutations := generator.ConstrainedPermutations([]func(permutation []int) bool{
	//		func(permutation []int) bool {
	//			// Verify "permutation[1] == unset", since the predicate relies on the room position
	//			return permutation[1] == unset || permutation[1] != 0
	//		},
	//	})
	ConstrainedPermutations(constraints []func(permutation []int) bool) [][]int
}

const unset = -1

func newPermutationGenerator(domains ...int) permutationGenerator {
	return &permutationGeneratorImplementation{domains: domains}
}

type permutationGeneratorImplementation struct {
	domains []int
}

func (generator *permutationGeneratorImplementation) ConstrainedPermutations(constraints []func(permutation []int) bool) [][]int {
	total := 1
	for _, domain := range generator.domains {
		total *= domain
	}

	permutation := make([]int, len(generator.domains))
	for i := range permutation {
		permutation[i] = unset
	}

	permutations := make([][]int, 0, total)
	generator.constrainedPermutations(constraints, 0, permutation, &permutations)
	return permutations
}

func (generator *permutationGeneratorImplementation) constrainedPermutations(
	constraints []func(permutation []int) bool,
	currentDomain int,
	permutation []int,
	permutations *[][]int) {

	if currentDomain >= len(generator.domains) {
		permutationCopy := make([]int, len(permutation))
		copy(permutationCopy, permutation)
		*permutations = append(*permutations, permutationCopy)
		return
	}

	for i := 0; i < generator.domains[currentDomain]; i++ {
		permutation[currentDomain] = i
		constraintViolated := false
		for _, constraint := range constraints {
			if !constraint(permutation) {
				constraintViolated = true
				break
			}
		}

		if constraintViolated {
			continue
		}

		generator.constrainedPermutations(constraints, currentDomain+1, permutation, permutations)
	}

	permutation[currentDomain] = unset
}
