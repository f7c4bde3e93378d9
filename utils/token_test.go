package utils_test

import (
	"testing"

	"github.com/fgsantosti/estoque-agua/utils"
)

func TestJwtRoundTrip(t *testing.T) {
	token, err := utils.JwtGenerate(42, "Maria")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	validated, err := utils.JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	claims, ok := validated.Claims.(*utils.JwtCustomClaim)
	if !ok {
		t.Fatalf("claims type %T", validated.Claims)
	}
	if claims.ID != 42 || claims.Name != "Maria" {
		t.Fatalf("claims = %d/%q, want 42/Maria", claims.ID, claims.Name)
	}
}

func TestJwtValidateRejectsGarbage(t *testing.T) {
	if _, err := utils.JwtValidate("not.a.token"); err == nil {
		t.Fatal("garbage token validated")
	}
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := utils.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := utils.ComparePassword(string(hashed), "secret123"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := utils.ComparePassword(string(hashed), "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
}
