package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

type normalizedSubmitInput struct {
	UserID  int64  `json:"userId"`
	PetID   int64  `json:"petId"`
	Message string `json:"message"`
}

type normalizedDecideInput struct {
	ApplicationID int64  `json:"applicationId"`
	Status        string `json:"status"`
}

// FingerprintSubmit hashes the submit payload, excluding the idempotency key.
func FingerprintSubmit(input ports.SubmitInput) (string, error) {
	return fingerprint(normalizedSubmitInput{
		UserID:  input.UserID,
		PetID:   input.PetID,
		Message: strings.TrimSpace(input.Message),
	})
}

// FingerprintDecide hashes the decision payload, excluding the idempotency key.
func FingerprintDecide(input ports.DecideInput) (string, error) {
	return fingerprint(normalizedDecideInput{
		ApplicationID: input.ApplicationID,
		Status:        strings.ToLower(strings.TrimSpace(input.Status)),
	})
}

func fingerprint(normalized any) (string, error) {
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func submitKey(input ports.SubmitInput) string {
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" {
		return ""
	}
	return fmt.Sprintf("submit:%d:%s", input.UserID, key)
}

func decideKey(input ports.DecideInput) string {
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" {
		return ""
	}
	return "decide:" + key
}

// replay loads a recorded response into dst. It reports false when key is
// unknown and fails with ErrIdempotencyConflict when hash differs.
func replay(ctx context.Context, tx ports.Tx, key, hash string, dst any) (bool, error) {
	record, err := tx.Idempotency().Get(ctx, key)
	if err != nil || record == nil {
		return false, err
	}
	if record.RequestHash != hash {
		return false, ports.ErrIdempotencyConflict
	}
	if err := json.Unmarshal(record.Response, dst); err != nil {
		return false, fmt.Errorf("decode idempotent response: %w", err)
	}
	return true, nil
}

func remember(ctx context.Context, tx ports.Tx, key, hash string, response any) error {
	payload, err := json.Marshal(response)
	if err != nil {
		return err
	}
	_, err = tx.Idempotency().Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: hash, Response: payload})
	return err
}
