// Package wizard models the product creation flow as a small state machine,
// decoupled from any rendering concern. A draft walks four steps in order and
// can only be confirmed into the catalog from the last one.
package wizard

import "fmt"

// Step identifies one screen of the product wizard.
type Step string

const (
	StepCategory Step = "categoria"
	StepInfo     Step = "informacoes"
	StepCosts    Step = "custos"
	StepPrice    Step = "preco"
)

var order = []Step{StepCategory, StepInfo, StepCosts, StepPrice}

// Guard carries the draft fields checked by transition rules.
type Guard struct {
	Name string
}

// Valid reports whether s is a known wizard step.
func Valid(s Step) bool {
	return index(s) >= 0
}

// First returns the step a new draft starts at.
func First() Step {
	return order[0]
}

// Position returns the 1-based position of s and the total number of steps,
// for progress display. Unknown steps report position 0.
func Position(s Step) (int, int) {
	return index(s) + 1, len(order)
}

// Next advances one step forward, enforcing the guard of the step being left.
// A draft may not leave the info step without a product name.
func Next(s Step, g Guard) (Step, error) {
	i := index(s)
	if i < 0 {
		return s, fmt.Errorf("etapa desconhecida: %s", s)
	}
	if i == len(order)-1 {
		return s, fmt.Errorf("já está na última etapa")
	}
	if s == StepInfo && g.Name == "" {
		return s, fmt.Errorf("nome é obrigatório")
	}
	return order[i+1], nil
}

// Back returns one step; the first step stays put.
func Back(s Step) Step {
	if i := index(s); i > 0 {
		return order[i-1]
	}
	return order[0]
}

// Confirm validates that the draft may be persisted to the catalog. Only the
// last step allows confirmation, and the name guard still holds.
func Confirm(s Step, g Guard) error {
	if s != StepPrice {
		return fmt.Errorf("produto só pode ser confirmado na etapa de preço")
	}
	if g.Name == "" {
		return fmt.Errorf("nome é obrigatório")
	}
	return nil
}

func index(s Step) int {
	for i, v := range order {
		if v == s {
			return i
		}
	}
	return -1
}
