package middleware

import (
	"testing"
	"time"

	"attendify_go/config"
	"attendify_go/database"
	"attendify_go/models"

	"github.com/golang-jwt/jwt/v4"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	config.AppConfig = &config.Config{
		JWTSecret:    "unit-test-secret-key-0123456789",
		JWTExpiresIn: time.Hour,
	}

	faculty := &models.Faculty{
		BaseModel:   models.BaseModel{ID: 7},
		FacultyID:   "FAC101",
		Department:  "cse",
		Designation: "Admin",
	}

	tokenString, err := GenerateToken(faculty)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		t.Fatalf("parsing generated token: %v", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		t.Fatal("generated token did not validate")
	}
	if claims.ID != 7 || claims.FacultyID != "FAC101" || claims.Department != "cse" || claims.Designation != "Admin" {
		t.Errorf("claims = %+v, want faculty 7/FAC101/cse/Admin", claims)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Errorf("token already expired at %v", claims.ExpiresAt)
	}
}

func TestBlacklistKeySharedByRevokeAndCheck(t *testing.T) {
	if got := blacklistKey("abc.def.ghi"); got != "blacklist:jwt:abc.def.ghi" {
		t.Errorf("blacklistKey = %q, want blacklist:jwt:abc.def.ghi", got)
	}
}

func TestTokenRevocationWithoutRedis(t *testing.T) {
	saved := database.RedisClient
	database.RedisClient = nil
	defer func() { database.RedisClient = saved }()

	if err := RevokeToken("some.token"); err != nil {
		t.Errorf("RevokeToken without Redis returned %v, want nil", err)
	}
	if isTokenBlacklisted("some.token") {
		t.Error("token reported as blacklisted without Redis")
	}
}
