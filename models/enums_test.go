package models_test

import (
	"encoding/json"
	"testing"

	"github.com/fgsantosti/estoque-agua/models"
)

func TestMovementKindUnmarshalRejectsUnknown(t *testing.T) {
	var kind models.MovementKind
	if err := json.Unmarshal([]byte(`"Entry"`), &kind); err != nil {
		t.Fatalf("valid kind rejected: %v", err)
	}
	if kind != models.MovementKindEntry {
		t.Fatalf("got %s, want %s", kind, models.MovementKindEntry)
	}

	if err := json.Unmarshal([]byte(`"Teleport"`), &kind); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestSaleStatusUnmarshalRejectsUnknown(t *testing.T) {
	var status models.SaleStatus
	if err := json.Unmarshal([]byte(`"PartialPaid"`), &status); err != nil {
		t.Fatalf("valid status rejected: %v", err)
	}
	if err := json.Unmarshal([]byte(`"Pending"`), &status); err == nil {
		t.Fatal("unknown status accepted")
	}
}
