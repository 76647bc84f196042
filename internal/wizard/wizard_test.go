package wizard

import "testing"

func TestNext_WalksAllStepsInOrder(t *testing.T) {
	g := Guard{Name: "Caixinha Milk"}
	s := First()

	for _, want := range []Step{StepInfo, StepCosts, StepPrice} {
		next, err := Next(s, g)
		if err != nil {
			t.Fatalf("Next(%s): %v", s, err)
		}
		if next != want {
			t.Fatalf("Next(%s) = %s, want %s", s, next, want)
		}
		s = next
	}

	if _, err := Next(s, g); err == nil {
		t.Fatalf("expected error advancing past the last step")
	}
}

func TestNext_InfoRequiresName(t *testing.T) {
	if _, err := Next(StepInfo, Guard{}); err == nil {
		t.Fatalf("expected name guard to block leaving the info step")
	}

	next, err := Next(StepInfo, Guard{Name: "Lembrancinha Kit"})
	if err != nil {
		t.Fatalf("unexpected err with name set: %v", err)
	}
	if next != StepCosts {
		t.Fatalf("Next(info) = %s, want %s", next, StepCosts)
	}
}

func TestNext_UnknownStep(t *testing.T) {
	if _, err := Next(Step("resumo"), Guard{Name: "x"}); err == nil {
		t.Fatalf("expected error for unknown step")
	}
}

func TestBack_FirstStepStaysPut(t *testing.T) {
	if got := Back(StepCategory); got != StepCategory {
		t.Fatalf("Back(first) = %s", got)
	}
	if got := Back(StepPrice); got != StepCosts {
		t.Fatalf("Back(price) = %s, want %s", got, StepCosts)
	}
}

func TestConfirm_OnlyFromPriceStep(t *testing.T) {
	g := Guard{Name: "Caixinha Milk"}

	for _, s := range []Step{StepCategory, StepInfo, StepCosts} {
		if err := Confirm(s, g); err == nil {
			t.Fatalf("Confirm(%s) should be rejected", s)
		}
	}

	if err := Confirm(StepPrice, g); err != nil {
		t.Fatalf("Confirm(price): %v", err)
	}
	if err := Confirm(StepPrice, Guard{}); err == nil {
		t.Fatalf("Confirm without a name should be rejected")
	}
}

func TestPosition(t *testing.T) {
	pos, total := Position(StepCosts)
	if pos != 3 || total != 4 {
		t.Fatalf("Position(costs) = %d/%d, want 3/4", pos, total)
	}
	if pos, _ := Position(Step("resumo")); pos != 0 {
		t.Fatalf("unknown step position = %d, want 0", pos)
	}
}
