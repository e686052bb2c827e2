package catalog

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestEffectivePriceAppliesShownDiscount(t *testing.T) {
	if got := EffectivePrice(200, 25, 1); got != 150 {
		t.Fatalf("expected discounted price 150, got %v", got)
	}
	if got := EffectivePrice(19.99, 10, 1); got < 17.990 || got > 17.992 {
		t.Fatalf("expected about 17.991, got %v", got)
	}
}

func TestEffectivePriceIgnoresHiddenDiscount(t *testing.T) {
	if got := EffectivePrice(200, 25, 0); got != 200 {
		t.Fatalf("expected raw price 200 when discount hidden, got %v", got)
	}
}

func TestEffectivePriceZeroDiscount(t *testing.T) {
	if got := EffectivePrice(80, 0, 1); got != 80 {
		t.Fatalf("expected 80, got %v", got)
	}
	if IsDiscounted(1, 0) {
		t.Fatal("zero discount must not count as discounted")
	}
}

func TestValidatePricing(t *testing.T) {
	if err := validatePricing(-1, 0); err == nil {
		t.Fatal("expected error for negative price")
	}
	for _, discount := range []float64{-5, 100.5} {
		if err := validatePricing(10, discount); err == nil {
			t.Fatalf("expected error for discount %v", discount)
		}
	}
	if err := validatePricing(10, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEffectivePriceExprShape(t *testing.T) {
	cond, ok := EffectivePriceExpr()["$cond"]
	if !ok {
		t.Fatal("expected $cond expression")
	}
	args, ok := cond.(bson.A)
	if !ok {
		t.Fatalf("expected $cond argument array, got %T", cond)
	}
	if len(args) != 3 || args[2] != "$price" {
		t.Fatalf("unexpected $cond arguments: %v", args)
	}
}
