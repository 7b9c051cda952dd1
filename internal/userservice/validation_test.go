package userservice

import (
	"testing"

	"github.com/writelyhq/writely/internal/common"
)

func TestValidateUsername(t *testing.T) {
	testCases := []struct {
		username string
		valid    bool
	}{
		{username: "", valid: false},
		{username: "a", valid: false},
		{username: "ab", valid: false},
		{username: "abc", valid: true},
		{username: "valid123", valid: true},
		{username: "invalid!", valid: false},
		{username: "invalid username", valid: false},
		{username: "invalid-username", valid: false},
		{username: "invalid_username", valid: false},
		{username: "abcdefghijklmnopqrstuvwxyz", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.username, func(t *testing.T) {
			v := common.NewValidator()
			validateUsername(v, tc.username)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
				for _, e := range v.Errors {
					t.Log(e)
				}
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		email string
		valid bool
	}{
		{email: "", valid: false},
		{email: "a", valid: false},
		{email: "a@", valid: false},
		{email: "a@b", valid: false},
		{email: "a@b.c", valid: false},
		{email: "a@b.com", valid: true},
		{email: "first.last+tag@example.co.uk", valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.email, func(t *testing.T) {
			v := common.NewValidator()
			validateEmail(v, tc.email)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
				for _, e := range v.Errors {
					t.Log(e)
				}
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		password string
		valid    bool
	}{
		{password: "", valid: false},
		{password: "short1A!", valid: true},
		{password: "alllowercase1!", valid: false},
		{password: "ALLUPPERCASE1!", valid: false},
		{password: "NoNumbers!", valid: false},
		{password: "NoSymbols123", valid: false},
		{password: "TestPassword123!", valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.password, func(t *testing.T) {
			v := common.NewValidator()
			validatePassword(v, tc.password)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
				for _, e := range v.Errors {
					t.Log(e)
				}
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	testCases := []struct {
		name  string
		token string
		valid bool
	}{
		{name: "empty", token: "", valid: false},
		{name: "too short", token: "ABC123", valid: false},
		{name: "expected length", token: "ABCDEFGHIJKLMNOPQRSTUVWXYZ", valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			ValidateToken(v, tc.token)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
			}
		})
	}
}
