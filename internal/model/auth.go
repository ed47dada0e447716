package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims are JWT claims identifying a household player
type PlayerClaims struct {
	Player PlayerID `json:"player"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for player login
type LoginRequest struct {
	Player   PlayerID `json:"player"`
	Password string   `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token  string   `json:"token"`
	Player PlayerID `json:"player"`
}

// MissionRequest adds or removes a Zoom mission
type MissionRequest struct {
	Mission string `json:"mission"`
}
