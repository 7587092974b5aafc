package sat

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func generateSATInstance(rng *rand.Rand, literals uint64, clauses int) SAT {
	satInstance := SAT{
		Variables: literals,
		Clauses:   make([][]int64, clauses),
	}

	sign := func() int64 {
		if rng.Float32() < 0.5 {
			return -1
		}
		return 1
	}

	for i := range clauses {
		satInstance.Clauses[i] = make([]int64, 0, literals)
		for j := range literals {
			if rng.Float32() < 0.5 {
				satInstance.Clauses[i] = append(satInstance.Clauses[i], sign()*(1+int64(j)))
			}
		}

		if len(satInstance.Clauses[i]) == 0 {
			satInstance.Clauses[i] = append(satInstance.Clauses[i], sign()*(1+rng.Int64N(int64(literals))))
		}
	}

	return satInstance
}

func TestToDIMACS(t *testing.T) {
	//** Arrange
	instance := SAT{Variables: 3, Clauses: [][]int64{{1, -2}, {3}}}

	//** Act
	dimacs := instance.ToDIMACS()

	//** Assert
	assert.Equal(t, "p cnf 3 2\n1 -2 0\n3 0\n", dimacs)
}

func TestDIMACSRoundTrip(t *testing.T) {
	t.Run("Well formed instance", func(t *testing.T) {
		//** Arrange
		input := "c example\np cnf 4 3\n1 -2 0\n\n3 4\n-1 0\n"

		//** Act
		instance, err := parseDIMACS(strings.NewReader(input))

		//** Assert
		assert.Nil(t, err)
		assert.Equal(t, uint64(4), instance.Variables)
		assert.Equal(t, [][]int64{{1, -2}, {3, 4}, {-1}}, instance.Clauses)
	})

	t.Run("Reads back its own output", func(t *testing.T) {
		instance := generateSATInstance(rand.New(rand.NewPCG(1, 2)), 12, 30)

		parsed, err := parseDIMACS(strings.NewReader(instance.ToDIMACS()))

		assert.Nil(t, err)
		assert.Equal(t, instance, parsed)
	})

	t.Run("Invalid problem line", func(t *testing.T) {
		_, err := parseDIMACS(strings.NewReader("p dnf 2 1\n1 0\n"))
		assert.NotNil(t, err)
	})

	t.Run("Invalid literal", func(t *testing.T) {
		_, err := parseDIMACS(strings.NewReader("p cnf 2 1\n1 x 0\n"))
		assert.NotNil(t, err)
	})
}

func TestSatisfies(t *testing.T) {
	instance := SAT{Variables: 2, Clauses: [][]int64{{1, 2}, {-1}}}

	assert.True(t, instance.Satisfies(SATSolution{-1, 2}))
	assert.False(t, instance.Satisfies(SATSolution{1, -2}))
	assert.False(t, instance.Satisfies(SATSolution{-1, 2, 1}), "contradicting literals")
}

// parseDIMACS reads a DIMACS-CNF instance. Comment lines are skipped and a clause ends at its 0 literal.
func parseDIMACS(reader io.Reader) (SAT, error) {
	var sat SAT
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "c") || strings.HasPrefix(line, "%") {
			continue
		}
		// Problem line
		if strings.HasPrefix(line, "p") {
			parts := strings.Fields(line)
			if len(parts) != 4 || parts[1] != "cnf" {
				return SAT{}, fmt.Errorf("invalid problem line: %s", line)
			}
			variables, err := strconv.ParseUint(parts[2], 10, 64)
			if err != nil {
				return SAT{}, fmt.Errorf("invalid variable count: %w", err)
			}
			sat.Variables = variables
			continue
		}

		clause := make([]int64, 0)
		for _, field := range strings.Fields(line) {
			literal, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return SAT{}, fmt.Errorf("invalid literal '%s': %w", field, err)
			}
			if literal == 0 {
				break
			}
			clause = append(clause, literal)
		}
		if len(clause) > 0 {
			sat.Clauses = append(sat.Clauses, clause)
		}
	}

	if err := scanner.Err(); err != nil {
		return SAT{}, fmt.Errorf("error reading instance: %w", err)
	}
	return sat, nil
}
