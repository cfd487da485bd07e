// Package ticket builds classic 3x9 tambola tickets. Multi-ticket batches are
// cut from a single strip of six, so a player's tickets never share a number.
package ticket

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/avvvet/tambola-services/internal/gamesvc/models"
)

const (
	StripSize   = 6
	maxAttempts = 500
)

var (
	ErrInvalidCount        = errors.New("number of tickets must be between 1 and 6")
	ErrGenerationExhausted = errors.New("ticket generation exhausted its retry budget")
)

// row subsets a column may occupy, by how many numbers it holds
var rowCombos = [4][][models.TicketRows]bool{
	0: {{false, false, false}},
	1: {{true, false, false}, {false, true, false}, {false, false, true}},
	2: {{true, true, false}, {true, false, true}, {false, true, true}},
	3: {{true, true, true}},
}

type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

var defaultGenerator = NewGenerator(rand.NewSource(time.Now().UnixNano()))

// Generate returns count non-overlapping tickets from the shared generator.
func Generate(count int) ([]models.Ticket, error) {
	return defaultGenerator.Generate(count)
}

func (g *Generator) Generate(count int) ([]models.Ticket, error) {
	if count < 1 || count > StripSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		strip, ok := g.strip()
		if !ok {
			continue
		}
		tickets := strip[:count]
		if err := ValidateBatch(tickets); err != nil {
			return nil, fmt.Errorf("generated malformed batch: %w", err)
		}
		return tickets, nil
	}
	return nil, ErrGenerationExhausted
}

// strip builds six tickets covering 1-90. It reports false on a dead end so
// the caller restarts the whole batch.
func (g *Generator) strip() ([]models.Ticket, bool) {
	var pools [models.TicketCols][]int
	for c := 0; c < models.TicketCols; c++ {
		lo, hi := ColumnRange(c)
		pool := make([]int, 0, hi-lo+1)
		for n := lo; n <= hi; n++ {
			pool = append(pool, n)
		}
		g.rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		pools[c] = pool
	}

	counts, ok := g.columnCounts(pools)
	if !ok {
		return nil, false
	}

	strip := make([]models.Ticket, StripSize)
	for t := 0; t < StripSize; t++ {
		placement, ok := g.placeRows(counts[t])
		if !ok {
			return nil, false
		}
		for c := 0; c < models.TicketCols; c++ {
			n := counts[t][c]
			nums := append([]int(nil), pools[c][:n]...)
			pools[c] = pools[c][n:]
			sort.Ints(nums)

			i := 0
			for r := 0; r < models.TicketRows; r++ {
				if placement[r][c] {
					strip[t][r][c] = nums[i]
					i++
				}
			}
		}
	}
	return strip, true
}

// columnCounts decides how many numbers each ticket takes from each column:
// one per column to start, then the leftovers spread so every ticket reaches
// fifteen without exceeding three in a column.
func (g *Generator) columnCounts(pools [models.TicketCols][]int) ([StripSize][models.TicketCols]int, bool) {
	var counts [StripSize][models.TicketCols]int
	var need [StripSize]int

	perTicket := models.TicketRows * models.NumbersPerRow
	for t := 0; t < StripSize; t++ {
		for c := 0; c < models.TicketCols; c++ {
			counts[t][c] = 1
		}
		need[t] = perTicket - models.TicketCols
	}

	// widest columns first, random among equals
	order := g.rnd.Perm(models.TicketCols)
	sort.SliceStable(order, func(i, j int) bool {
		return len(pools[order[i]]) > len(pools[order[j]])
	})

	for _, c := range order {
		extra := len(pools[c]) - StripSize
		for e := 0; e < extra; e++ {
			total := 0
			for t := 0; t < StripSize; t++ {
				if need[t] > 0 && counts[t][c] < models.TicketRows {
					total += need[t]
				}
			}
			if total == 0 {
				return counts, false
			}

			pick := g.rnd.Intn(total)
			for t := 0; t < StripSize; t++ {
				if need[t] == 0 || counts[t][c] >= models.TicketRows {
					continue
				}
				if pick < need[t] {
					counts[t][c]++
					need[t]--
					break
				}
				pick -= need[t]
			}
		}
	}
	return counts, true
}

// placeRows picks, column by column, which rows receive that column's
// numbers so every row ends with exactly five.
func (g *Generator) placeRows(colCounts [models.TicketCols]int) ([models.TicketRows][models.TicketCols]bool, bool) {
	var placement [models.TicketRows][models.TicketCols]bool
	var rowSums [models.TicketRows]int

	var solve func(col int) bool
	solve = func(col int) bool {
		if col == models.TicketCols {
			for _, s := range rowSums {
				if s != models.NumbersPerRow {
					return false
				}
			}
			return true
		}

		need := colCounts[col]
		if need < 0 || need >= len(rowCombos) {
			return false
		}
		combos := rowCombos[need]
		for _, i := range g.rnd.Perm(len(combos)) {
			combo := combos[i]
			fits := true
			for r := 0; r < models.TicketRows; r++ {
				if combo[r] && rowSums[r] >= models.NumbersPerRow {
					fits = false
					break
				}
			}
			if !fits {
				continue
			}

			for r := 0; r < models.TicketRows; r++ {
				if combo[r] {
					placement[r][col] = true
					rowSums[r]++
				}
			}
			if solve(col + 1) {
				return true
			}
			for r := 0; r < models.TicketRows; r++ {
				if combo[r] {
					placement[r][col] = false
					rowSums[r]--
				}
			}
		}
		return false
	}

	return placement, solve(0)
}
