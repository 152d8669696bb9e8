package app

import (
	"testing"
	"time"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	cfg := TokenConfig{
		SecretKey: "user-secret",
		Expiry:    24 * time.Hour,
		Issuer:    "user-issuer",
	}
	tm := NewTokenManager(cfg)

	uid := int64(1001)
	nickname := "testuser"
	ip := "127.0.0.1"

	// 1. 测试生成和解析
	token, err := tm.Generate(uid, nickname, ip)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	parsedUser, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsedUser.UID != uid {
		t.Errorf("Expected UID %d, got %d", uid, parsedUser.UID)
	}
	if parsedUser.Nickname != nickname {
		t.Errorf("Expected Nickname %s, got %s", nickname, parsedUser.Nickname)
	}
	if parsedUser.IP != ip {
		t.Errorf("Expected IP %s, got %s", ip, parsedUser.IP)
	}
	if parsedUser.Issuer != cfg.Issuer {
		t.Errorf("Expected Issuer %s, got %s", cfg.Issuer, parsedUser.Issuer)
	}

	// 2. 测试过期
	shortExpiryCfg := cfg
	shortExpiryCfg.Expiry = -1 * time.Second
	tmExpired := NewTokenManager(shortExpiryCfg)

	expiredToken, err := tmExpired.Generate(uid, nickname, ip)
	if err != nil {
		t.Fatalf("Generate (expired) failed: %v", err)
	}
	if _, err = tm.Parse(expiredToken); err == nil {
		t.Error("Expected error for expired token, but got nil")
	}

	// 3. 测试错误的密钥
	wrongKeyCfg := cfg
	wrongKeyCfg.SecretKey = "wrong-user-secret"
	tmWrongKey := NewTokenManager(wrongKeyCfg)

	wrongToken, _ := tmWrongKey.Generate(uid, nickname, ip)
	if _, err = tm.Parse(wrongToken); err == nil {
		t.Error("Expected error for token generated with different secret key, but got nil")
	}

	// 4. 测试篡改后的 Token
	if _, err = tm.Parse(token + "xyz"); err == nil {
		t.Error("Expected error for tampered user token, but got nil")
	}
}

func TestTokenManager_RefreshGenerateAndParse(t *testing.T) {
	cfg := TokenConfig{
		SecretKey:     "user-secret",
		RefreshExpiry: time.Hour,
		Issuer:        "test-issuer",
	}
	tm := NewTokenManager(cfg)

	refresh, err := tm.GenerateRefresh(42)
	if err != nil {
		t.Fatalf("GenerateRefresh failed: %v", err)
	}
	if refresh.TokenID == "" {
		t.Fatal("Expected a token id")
	}

	claims, err := tm.ParseRefresh(refresh.Token)
	if err != nil {
		t.Fatalf("ParseRefresh failed: %v", err)
	}
	if claims.UID != 42 {
		t.Errorf("Expected UID 42, got %d", claims.UID)
	}
	if claims.ID != refresh.TokenID {
		t.Errorf("Expected ID %s, got %s", refresh.TokenID, claims.ID)
	}

	expectedExp := time.Now().Add(cfg.RefreshExpiry)
	if claims.ExpiresAt.Unix() < expectedExp.Unix()-1 || claims.ExpiresAt.Unix() > expectedExp.Unix()+1 {
		t.Errorf("Expected ExpiresAt around %v, got %v", expectedExp, claims.ExpiresAt)
	}

	second, err := tm.GenerateRefresh(42)
	if err != nil {
		t.Fatalf("GenerateRefresh failed: %v", err)
	}
	if second.TokenID == refresh.TokenID {
		t.Error("Expected distinct token ids for each refresh token")
	}
}

func TestTokenManager_SubjectsAreNotInterchangeable(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret"})

	access, err := tm.Generate(7, "n", "127.0.0.1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	refresh, err := tm.GenerateRefresh(7)
	if err != nil {
		t.Fatalf("GenerateRefresh failed: %v", err)
	}

	if _, err := tm.ParseRefresh(access); err == nil {
		t.Error("Expected access token to be rejected as refresh token")
	}
	if _, err := tm.Parse(refresh.Token); err == nil {
		t.Error("Expected refresh token to be rejected as access token")
	}
}
